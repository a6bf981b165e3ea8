package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qbacademy/qmscore/internal/audit"
	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/formdata"
	"github.com/qbacademy/qmscore/internal/store"
)

// formEnv bundles the handles a forms subcommand needs.
type formEnv struct {
	st  *store.Store
	log *audit.Logger
	fd  *formdata.Store
}

func openFormEnv(o *RootOptions) (*formEnv, func(), error) {
	st, err := o.openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	log, err := o.openAudit()
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	fd := formdata.New(st, log, o.Config.Forms.SaveDelay)
	cleanup := func() {
		log.Close()
		st.Close()
	}
	return &formEnv{st: st, log: log, fd: fd}, cleanup, nil
}

// NewFormsCommand creates the forms command group.
func NewFormsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Manage saved form data",
	}
	cmd.AddCommand(newFormsListCommand(rootOpts))
	cmd.AddCommand(newFormsGetCommand(rootOpts))
	cmd.AddCommand(newFormsSetCommand(rootOpts))
	cmd.AddCommand(newFormsRmCommand(rootOpts))
	cmd.AddCommand(newFormsExportCommand(rootOpts))
	return cmd
}

func newFormsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List saved forms by name",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			env, cleanup, err := openFormEnv(rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := env.fd.ListAll(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return printJSON(out, records)
			}
			for _, r := range records {
				fmt.Fprintf(out, "%s\t(updated %s)\n",
					r.FormName, r.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newFormsGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <name>",
		Short:         "Print a form's payload",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			env, cleanup, err := openFormEnv(rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			payload, ok, err := env.fd.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no form named %q", args[0])
			}

			switch p := payload.(type) {
			case domain.Structured:
				return printJSON(cmd.OutOrStdout(), p.Value)
			case domain.RawText:
				fmt.Fprintln(cmd.OutOrStdout(), string(p))
			}
			return nil
		},
	}
}

// FormsSetOptions holds flags for forms set.
type FormsSetOptions struct {
	*RootOptions
	File string
	Raw  string
}

func newFormsSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormsSetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Save or replace a form's payload",
		Long: `Save a payload under the given form name, replacing any existing one.

The payload comes from --file (JSON, or YAML by extension) or --raw.
Raw text that is not valid JSON is stored verbatim.

Examples:
  qmsctl -u admin -p admin123 forms set training_plan --file plan.json
  qmsctl forms set audit_checklist --file checklist.yaml
  qmsctl forms set note --raw "مسودة أولى"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			payload, err := readPayload(opts.File, opts.Raw, cmd.Flags().Changed("raw"))
			if err != nil {
				return err
			}

			env, cleanup, err := openFormEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			defer cleanup()

			actor, err := opts.identity(ctx, env.st, env.log)
			if err != nil {
				return err
			}

			if err := env.fd.Save(ctx, args[0], payload, actor); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved form %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "payload file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&opts.Raw, "raw", "", "inline payload text")
	cmd.MarkFlagsMutuallyExclusive("file", "raw")

	return cmd
}

// readPayload builds the payload for forms set from its flags.
func readPayload(file, raw string, rawSet bool) (domain.Payload, error) {
	if file == "" && !rawSet {
		return nil, fmt.Errorf("one of --file or --raw is required")
	}
	if rawSet {
		return domain.DecodePayload(raw), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		return domain.NewStructured(v), nil
	default:
		return domain.DecodePayload(string(data)), nil
	}
}

func newFormsRmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <name>",
		Short:         "Delete a saved form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			env, cleanup, err := openFormEnv(rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			actor, err := rootOpts.identity(ctx, env.st, env.log)
			if err != nil {
				return err
			}

			ok, err := env.fd.Delete(ctx, args[0], actor)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no form named %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted form %q\n", args[0])
			return nil
		},
	}
}

// FormsExportOptions holds flags for forms export.
type FormsExportOptions struct {
	*RootOptions
	Dir string
}

func newFormsExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormsExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "export",
		Short:         "Write a timestamped JSON snapshot of all form data",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			env, cleanup, err := openFormEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			defer cleanup()

			dest, err := env.fd.ExportTo(ctx, opts.Dir)
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
