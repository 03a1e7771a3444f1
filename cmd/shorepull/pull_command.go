package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"shorepull/internal/diag"
	"shorepull/internal/inventory"
	"shorepull/internal/pull"
	"shorepull/internal/selection"
	"shorepull/internal/services"
)

func newPullCommand(ctx *commandContext) *cobra.Command {
	var dataTypeFlag string
	var selectFlag string
	var allFlag bool
	var refreshOnly bool

	cmd := &cobra.Command{
		Use:   "pull [staging-dir]",
		Short: "Discover new packages and stage a selection for sorting",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lock, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			stagingDir, err := ctx.stagingDirArg(args)
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			orch, err := ctx.buildOrchestrator(store, stagingDir)
			if err != nil {
				return err
			}

			cmd.SetContext(services.WithRunID(cmd.Context(), uuid.NewString()))

			report, err := orch.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			if !refreshOnly {
				dataTypes, err := requestedDataTypes(dataTypeFlag)
				if err != nil {
					return err
				}
				for _, dataType := range dataTypes {
					batchReport, err := pullDataType(cmd, orch, dataType, selectFlag, allFlag)
					if err != nil {
						return err
					}
					report.Merge(batchReport)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			if report.Failed() {
				return fmt.Errorf("pull completed with %d problem(s)", len(report.Diagnostics))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataTypeFlag, "data-type", "t", "", "Limit to one data type (wcsd, multibeam, trackline)")
	cmd.Flags().StringVarP(&selectFlag, "select", "s", "", "Non-interactive package selection, e.g. \"1,3-5\"")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Fetch every package the batch planner offers")
	cmd.Flags().BoolVar(&refreshOnly, "refresh-only", false, "Update the inventory without fetching anything")
	return cmd
}

func pullDataType(
	cmd *cobra.Command,
	orch *pull.Orchestrator,
	dataType inventory.DataType,
	selectFlag string,
	allFlag bool,
) (diag.Report, error) {
	out := cmd.OutOrStdout()

	batch, err := orch.PlanBatch(cmd.Context(), dataType)
	if err != nil {
		return diag.Report{}, err
	}
	if len(batch.Records) == 0 {
		fmt.Fprintf(out, "No pending %s packages fit the current budget.\n", dataType)
		return diag.Report{}, nil
	}

	fmt.Fprintf(out, "Pending %s packages (%s total):\n", dataType, humanize.IBytes(uint64(batch.TotalBytes)))
	fmt.Fprintln(out, renderBatchTable(batch))

	records, err := chooseRecords(cmd, batch, selectFlag, allFlag)
	if err != nil {
		return diag.Report{}, err
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "Skipping %s.\n", dataType)
		return diag.Report{}, nil
	}

	return orch.FetchRecords(cmd.Context(), records), nil
}

// chooseRecords resolves the caller's pick: --all takes the whole batch,
// --select parses without prompting, and otherwise an interactive terminal is
// asked. Without a terminal or explicit selection nothing is fetched.
func chooseRecords(cmd *cobra.Command, batch selection.Batch, selectFlag string, allFlag bool) ([]*inventory.Record, error) {
	if allFlag {
		return batch.Records, nil
	}
	if strings.TrimSpace(selectFlag) != "" {
		indices, err := selection.ParseChoices(selectFlag, len(batch.Records))
		if err != nil {
			return nil, err
		}
		return batch.Pick(indices), nil
	}
	if !stdinIsTerminal() {
		fmt.Fprintln(cmd.OutOrStdout(), "No selection given and stdin is not a terminal; use --select or --all.")
		return nil, nil
	}

	input, err := promptSelection(cmd)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return nil, nil
	case "all":
		return batch.Records, nil
	}
	indices, err := selection.ParseChoices(input, len(batch.Records))
	if err != nil {
		return nil, err
	}
	return batch.Pick(indices), nil
}

func renderBatchTable(batch selection.Batch) string {
	rows := make([]table.Row, 0, len(batch.Records))
	for i, rec := range batch.Records {
		rows = append(rows, table.Row{
			i + 1,
			rec.CruiseID,
			rec.PlatformName,
			rec.InstrumentName,
			rec.FileCount,
			humanize.IBytes(uint64(rec.SizeBytes)),
		})
	}
	return renderTable(
		table.Row{"#", "Cruise", "Vessel", "Instrument", "Files", "Size"},
		rows,
		1, 5, 6,
	)
}

func requestedDataTypes(flag string) ([]inventory.DataType, error) {
	trimmed := strings.TrimSpace(flag)
	if trimmed == "" {
		return inventory.AllDataTypes(), nil
	}
	dataType, ok := inventory.ParseDataType(trimmed)
	if !ok {
		return nil, fmt.Errorf("unknown data type %q (expected wcsd, multibeam, or trackline)", trimmed)
	}
	return []inventory.DataType{dataType}, nil
}
