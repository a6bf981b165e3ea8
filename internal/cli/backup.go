package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// BackupOptions holds flags for the backup command.
type BackupOptions struct {
	*RootOptions
	Dir string
}

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a timestamped snapshot of the database",
		Long: `Write a consistent point-in-time snapshot of the whole database to a
timestamped file in the target directory.

Examples:
  qmsctl backup
  qmsctl backup --dir /mnt/backups`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			dest, err := st.BackupTo(context.Background(), opts.Dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory to write the snapshot into")

	return cmd
}
