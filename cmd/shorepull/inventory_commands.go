package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"shorepull/internal/freespace"
	"shorepull/internal/inventory"
)

func newInventoryCommand(ctx *commandContext) *cobra.Command {
	inventoryCmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inspect the package inventory",
	}

	inventoryCmd.AddCommand(newInventoryListCommand(ctx))
	inventoryCmd.AddCommand(newInventoryStatsCommand(ctx))

	return inventoryCmd
}

func newInventoryListCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string
	var dataTypeFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inventory records",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			records, err = filterRecords(records, statusFlag, dataTypeFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No matching records.")
				return nil
			}

			rows := make([]table.Row, 0, len(records))
			var totalBytes int64
			for _, rec := range records {
				rows = append(rows, table.Row{
					rec.FilesetID,
					rec.CruiseID,
					rec.PlatformName,
					string(rec.DataType),
					rec.DateDir,
					humanize.IBytes(uint64(rec.SizeBytes)),
					string(rec.PulledStatus),
				})
				totalBytes += rec.SizeBytes
			}
			fmt.Fprintln(out, renderTable(
				table.Row{"Fileset", "Cruise", "Vessel", "Type", "Date", "Size", "Status"},
				rows,
				1, 6,
			))
			fmt.Fprintf(out, "%d record(s), %s\n", len(records), humanize.IBytes(uint64(totalBytes)))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (pending, pulled)")
	cmd.Flags().StringVarP(&dataTypeFlag, "data-type", "t", "", "Filter by data type (wcsd, multibeam, trackline)")
	return cmd
}

func newInventoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show inventory counts and staging free space",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Summarize(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:   %d\n", stats.Total)
			fmt.Fprintf(out, "Pending: %d\n", stats.Pending)
			fmt.Fprintf(out, "Pulled:  %d\n", stats.Pulled)
			for _, dataType := range inventory.AllDataTypes() {
				fmt.Fprintf(out, "  %-10s %d\n", dataType, stats.ByType[dataType])
			}

			available, err := freespace.StatfsProber{}.AvailableBytes(cfg.Paths.StagingDir)
			if err != nil {
				return err
			}
			budget, ok := freespace.Budget(available, cfg.CushionBytes())
			fmt.Fprintf(out, "Staging free space: %s", humanize.IBytes(available))
			if ok {
				fmt.Fprintf(out, " (%s usable past the cushion)\n", humanize.IBytes(budget))
			} else {
				fmt.Fprintf(out, " (inside the %s cushion; no transfer budget)\n", humanize.IBytes(cfg.CushionBytes()))
			}
			return nil
		},
	}
}

func filterRecords(records []*inventory.Record, statusFlag, dataTypeFlag string) ([]*inventory.Record, error) {
	status := strings.TrimSpace(strings.ToLower(statusFlag))
	if status != "" && status != string(inventory.StatusPending) && status != string(inventory.StatusPulled) {
		return nil, fmt.Errorf("unknown status %q (expected pending or pulled)", statusFlag)
	}

	var dataType inventory.DataType
	if trimmed := strings.TrimSpace(dataTypeFlag); trimmed != "" {
		parsed, ok := inventory.ParseDataType(trimmed)
		if !ok {
			return nil, fmt.Errorf("unknown data type %q (expected wcsd, multibeam, or trackline)", dataTypeFlag)
		}
		dataType = parsed
	}

	filtered := records[:0]
	for _, rec := range records {
		if status != "" && string(rec.PulledStatus) != status {
			continue
		}
		if dataType != "" && rec.DataType != dataType {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered, nil
}
