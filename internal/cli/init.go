package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qbacademy/qmscore/internal/audit"
	"github.com/qbacademy/qmscore/internal/filestore"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the database and storage tree",
		Long: `Create the database file, bring its schema up to date, ensure the
default admin account exists, and pre-create the upload directories.

Safe to run repeatedly. A legacy form_data table without the form_name
column is dropped and recreated - that repair loses its rows.

Examples:
  qmsctl init
  qmsctl init --config ./qmscore.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			if _, err := filestore.New(st, audit.New(st), rootOpts.Config.Files.Dir); err != nil {
				return fmt.Errorf("failed to create storage tree: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "database ready: %s\nstorage tree ready: %s\n",
				rootOpts.Config.Database.Path, rootOpts.Config.Files.Dir)
			return nil
		},
	}
}
