// Package cli implements the qmsctl admin tool. It plays the role of the
// desktop UI layer: it authenticates once per invocation, enforces the
// boundary policies (such as the upload size limit), and calls into the
// persistence components.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qbacademy/qmscore/internal/audit"
	"github.com/qbacademy/qmscore/internal/auth"
	"github.com/qbacademy/qmscore/internal/config"
	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
	Username   string
	Password   string

	// Config is populated by the root PersistentPreRunE.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qmsctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qmsctl",
		Short: "QMS Core - quality management record keeping",
		Long:  "Admin tool for the QB Academy quality management database: users, uploads, form data, backups.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if opts.Verbose {
				cfg.Log.Level = "debug"
			}
			opts.Config = cfg
			setupLogger(cfg.Log)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default ./qmscore.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Username, "username", "u", "", "account to act as for mutating commands")
	cmd.PersistentFlags().StringVarP(&opts.Password, "password", "p", "", "password for --username")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewFilesCommand(opts))
	cmd.AddCommand(NewFormsCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore opens the primary database handle from config.
func (o *RootOptions) openStore() (*store.Store, error) {
	return store.Open(o.Config.Database.Path, store.Options{
		BusyTimeout: o.Config.Database.BusyTimeout,
	})
}

// openAudit opens the decoupled audit handle on the same database.
func (o *RootOptions) openAudit() (*audit.Logger, error) {
	return audit.Open(o.Config.Database.Path, store.Options{
		BusyTimeout: o.Config.Database.BusyTimeout,
	})
}

// identity authenticates --username/--password and returns the session
// identity, or nil when no username was supplied (system actor).
func (o *RootOptions) identity(ctx context.Context, st *store.Store, log *audit.Logger) (*domain.Identity, error) {
	if o.Username == "" {
		return nil, nil
	}
	gw := auth.New(st, log, o.Config.Auth.MinPasswordLen)
	id, ok, err := gw.Authenticate(ctx, o.Username, o.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("invalid credentials for %q", o.Username)
	}
	return id, nil
}
