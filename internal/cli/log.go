package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qbacademy/qmscore/internal/audit"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Limit int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity, newest first",
		Long: `Show the newest activity log entries.

Examples:
  qmsctl log
  qmsctl log --limit 10 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			entries, err := audit.New(st).Recent(context.Background(), opts.Limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return printJSON(out, entries)
			}
			for _, e := range entries {
				actor := "-"
				if e.UserID != nil {
					actor = fmt.Sprintf("%d", *e.UserID)
				}
				target := e.TableName
				if e.RecordID != nil {
					target = fmt.Sprintf("%s/%d", e.TableName, *e.RecordID)
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"), actor, e.Action, target)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to show (default 50)")

	return cmd
}
