package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qbacademy/qmscore/internal/audit"
	"github.com/qbacademy/qmscore/internal/domain"
	"github.com/qbacademy/qmscore/internal/filestore"
	"github.com/qbacademy/qmscore/internal/store"
)

// fileEnv bundles the handles a files subcommand needs.
type fileEnv struct {
	st  *store.Store
	log *audit.Logger
	fs  *filestore.Store
}

// openFileEnv opens the database, the decoupled audit handle and the file
// store. The returned cleanup closes them in reverse order.
func openFileEnv(o *RootOptions) (*fileEnv, func(), error) {
	st, err := o.openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	log, err := o.openAudit()
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	fs, err := filestore.New(st, log, o.Config.Files.Dir)
	if err != nil {
		log.Close()
		st.Close()
		return nil, nil, err
	}
	cleanup := func() {
		log.Close()
		st.Close()
	}
	return &fileEnv{st: st, log: log, fs: fs}, cleanup, nil
}

// FilesAddOptions holds flags for files add.
type FilesAddOptions struct {
	*RootOptions
	Category     string
	Description  string
	RelatedTable string
	RelatedID    int64
}

// NewFilesCommand creates the files command group.
func NewFilesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage uploaded files",
	}
	cmd.AddCommand(newFilesAddCommand(rootOpts))
	cmd.AddCommand(newFilesListCommand(rootOpts))
	cmd.AddCommand(newFilesInfoCommand(rootOpts))
	cmd.AddCommand(newFilesRmCommand(rootOpts))
	return cmd
}

func newFilesAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilesAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Copy a file into the storage tree and register it",
		Long: `Copy a file into the category directory under a collision-resistant
name and record it in the database.

The size limit is enforced here, at the caller boundary - the store
itself accepts any size.

Examples:
  qmsctl -u admin -p admin123 files add report.pdf --category reports
  qmsctl files add scan.png --related-table certificates --related-id 7`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if info, err := os.Stat(args[0]); err == nil {
				if max := opts.Config.Files.MaxUploadSize; max > 0 && info.Size() > max {
					return fmt.Errorf("file too large: %s exceeds the %s limit",
						formatSize(info.Size()), formatSize(max))
				}
			}

			env, cleanup, err := openFileEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			defer cleanup()

			actor, err := opts.identity(ctx, env.st, env.log)
			if err != nil {
				return err
			}

			var related *domain.SoftRef
			if opts.RelatedTable != "" {
				related = &domain.SoftRef{Table: opts.RelatedTable, ID: opts.RelatedID}
			}

			rec, err := env.fs.Store(ctx, args[0], filestore.StoreOptions{
				Category:    opts.Category,
				Related:     related,
				Actor:       actor,
				Description: opts.Description,
			})
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s as %s (id %d, %s)\n",
				rec.OriginalName, rec.StoredName, rec.ID, formatSize(rec.Size))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", domain.CategoryGeneral, "file category")
	cmd.Flags().StringVar(&opts.Description, "description", "", "free-text description")
	cmd.Flags().StringVar(&opts.RelatedTable, "related-table", "", "table of the related record (soft reference)")
	cmd.Flags().Int64Var(&opts.RelatedID, "related-id", 0, "id of the related record")

	return cmd
}

// FilesListOptions holds flags for files list.
type FilesListOptions struct {
	*RootOptions
	Category string
}

func newFilesListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilesListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List uploaded files, newest first",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			env, cleanup, err := openFileEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := env.fs.List(ctx, filestore.Filter{Category: opts.Category})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return printJSON(out, records)
			}
			for _, r := range records {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n",
					r.ID, r.Category, r.OriginalName, formatSize(r.Size),
					r.UploadedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "only this category")

	return cmd
}

func newFilesInfoCommand(rootOpts *RootOptions) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:           "info",
		Short:         "Show one file record",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			env, cleanup, err := openFileEnv(rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			rec, ok, err := env.fs.Get(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no file with id %d", id)
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return printJSON(out, rec)
			}
			fmt.Fprintf(out, "id:          %d\n", rec.ID)
			fmt.Fprintf(out, "original:    %s\n", rec.OriginalName)
			fmt.Fprintf(out, "stored:      %s\n", rec.StoredName)
			fmt.Fprintf(out, "path:        %s\n", rec.Path)
			fmt.Fprintf(out, "category:    %s\n", rec.Category)
			fmt.Fprintf(out, "size:        %s\n", formatSize(rec.Size))
			fmt.Fprintf(out, "hash:        %s\n", rec.Hash)
			fmt.Fprintf(out, "uploaded:    %s\n", rec.UploadedAt.Format("2006-01-02 15:04:05"))
			if rec.Related != nil {
				fmt.Fprintf(out, "related:     %s/%d\n", rec.Related.Table, rec.Related.ID)
			}
			if rec.Description != "" {
				fmt.Fprintf(out, "description: %s\n", rec.Description)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "file id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newFilesRmCommand(rootOpts *RootOptions) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:           "rm",
		Short:         "Delete a file and its record",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			env, cleanup, err := openFileEnv(rootOpts)
			if err != nil {
				return err
			}
			defer cleanup()

			actor, err := rootOpts.identity(ctx, env.st, env.log)
			if err != nil {
				return err
			}

			ok, err := env.fs.Delete(ctx, id, actor)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no file with id %d", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted file %d\n", id)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "file id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
