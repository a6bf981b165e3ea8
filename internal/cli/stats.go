package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long: `Show row counts and total stored file bytes.

Examples:
  qmsctl stats
  qmsctl stats --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			stats, err := st.Stats(context.Background())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return printJSON(out, stats)
			}

			fmt.Fprintf(out, "active users:   %d\n", stats.ActiveUsers)
			fmt.Fprintf(out, "procedures:     %d\n", stats.Procedures)
			fmt.Fprintf(out, "forms:          %d\n", stats.Forms)
			fmt.Fprintf(out, "uploaded files: %d (%s)\n", stats.UploadedFiles, formatSize(stats.TotalFileSize))
			fmt.Fprintf(out, "certificates:   %d\n", stats.Certificates)
			return nil
		},
	}
}
