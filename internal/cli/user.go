package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qbacademy/qmscore/internal/audit"
	"github.com/qbacademy/qmscore/internal/auth"
	"github.com/qbacademy/qmscore/internal/domain"
)

// UserCreateOptions holds flags for user create.
type UserCreateOptions struct {
	*RootOptions
	NewUsername string
	NewPassword string
	FullName    string
	Email       string
	Role        string
}

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCommand(rootOpts))
	cmd.AddCommand(newUserListCommand(rootOpts))
	cmd.AddCommand(newUserSetActiveCommand(rootOpts))
	return cmd
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		Long: `Create a new account. Fails when the username is taken or the
password is shorter than the configured minimum.

Examples:
  qmsctl -u admin -p admin123 user create --new-username sara --new-password s3cret1 --full-name "سارة أحمد"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := opts.openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			log, err := opts.openAudit()
			if err != nil {
				return fmt.Errorf("failed to open audit log: %w", err)
			}
			defer log.Close()

			actor, err := opts.identity(ctx, st, log)
			if err != nil {
				return err
			}

			gw := auth.New(st, log, opts.Config.Auth.MinPasswordLen)
			id, err := gw.CreateUser(ctx, auth.CreateUserInput{
				Username: opts.NewUsername,
				Password: opts.NewPassword,
				FullName: opts.FullName,
				Email:    opts.Email,
				Role:     opts.Role,
			}, actor)
			if errors.Is(err, domain.ErrDuplicateUser) {
				return fmt.Errorf("username %q already exists", opts.NewUsername)
			}
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n",
				id.Username, id.UserID, id.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.NewUsername, "new-username", "", "username for the new account (required)")
	_ = cmd.MarkFlagRequired("new-username")
	cmd.Flags().StringVar(&opts.NewPassword, "new-password", "", "password for the new account (required)")
	_ = cmd.MarkFlagRequired("new-password")
	cmd.Flags().StringVar(&opts.FullName, "full-name", "", "display name (required)")
	_ = cmd.MarkFlagRequired("full-name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Role, "role", "user", "account role")

	return cmd
}

func newUserListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := rootOpts.openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			gw := auth.New(st, audit.New(st), rootOpts.Config.Auth.MinPasswordLen)
			users, err := gw.ListUsers(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return printJSON(out, users)
			}
			for _, u := range users {
				state := "active"
				if !u.IsActive {
					state = "disabled"
				}
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.FullName, u.Role, state)
			}
			return nil
		},
	}
}

// UserSetActiveOptions holds flags for user set-active.
type UserSetActiveOptions struct {
	*RootOptions
	ID     int64
	Active bool
}

func newUserSetActiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserSetActiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set-active",
		Short: "Enable or disable an account",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := opts.openStore()
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer st.Close()

			log, err := opts.openAudit()
			if err != nil {
				return fmt.Errorf("failed to open audit log: %w", err)
			}
			defer log.Close()

			actor, err := opts.identity(ctx, st, log)
			if err != nil {
				return err
			}

			gw := auth.New(st, log, opts.Config.Auth.MinPasswordLen)
			ok, err := gw.SetActive(ctx, opts.ID, opts.Active, actor)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no user with id %d", opts.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d active=%v\n", opts.ID, opts.Active)
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.ID, "id", 0, "user id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVar(&opts.Active, "active", true, "target active state")

	return cmd
}
