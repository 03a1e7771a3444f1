package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shorepull/internal/services"
)

func newSortCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort [staging-dir]",
		Short: "Validate staged packages and route them into their landing zones",
		Long: "Sort checks every staged archive against its checksum manifest and, only if " +
			"the entire batch verifies, extracts or copies each package into its landing zone. " +
			"A single checksum mismatch blocks the whole batch. Without an argument the " +
			"configured staging directory is sorted.",
		Args: cobra.MaximumNArgs(1),
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

			validator, err := ctx.buildValidator()
			if err != nil {
				return err
			}
			router, err := ctx.buildRouter(store)
			if err != nil {
				return err
			}

			cmd.SetContext(services.WithRunID(cmd.Context(), uuid.NewString()))
			out := cmd.OutOrStdout()

			result, err := validator.ValidateDir(cmd.Context(), stagingDir)
			if err != nil {
				return err
			}
			if !result.OK() {
				fmt.Fprintln(out, "Validation failed; nothing was routed:")
				for _, outcome := range result.Failures() {
					if outcome.Err != nil {
						fmt.Fprintf(out, "  - %s: %v\n", outcome.ArchivePath, outcome.Err)
						continue
					}
					fmt.Fprintf(out, "  - %s: checksum mismatch (expected %s, computed %s)\n",
						outcome.ArchivePath, outcome.ExpectedChecksum, outcome.ComputedChecksum)
				}
				return fmt.Errorf("%w: %d of %d staged archive(s) failed",
					services.ErrValidation, len(result.Failures()), len(result.Outcomes))
			}

			report, err := router.SortDir(cmd.Context(), stagingDir)
			if err != nil {
				return err
			}
			report.Validated = len(result.Outcomes)

			fmt.Fprintln(out, report.Summary())
			if report.Failed() {
				return fmt.Errorf("sort completed with %d problem(s)", len(report.Diagnostics))
			}
			return nil
		},
	}
	return cmd
}
