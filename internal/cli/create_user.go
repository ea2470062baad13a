package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkpost/inkpost-server/internal/service"
	"github.com/inkpost/inkpost-server/internal/validation"
)

// CreateUserOptions holds flags for the create-user command.
type CreateUserOptions struct {
	Email    string
	Name     string
	Password string
	Staff    bool
}

// NewCreateUserCommand creates the create-user command.
func NewCreateUserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateUserOptions{}

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		Long: `Create an active account directly in the database.

--staff marks the account as staff, which the HTTP API cannot do.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateUser(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	cmd.Flags().BoolVar(&opts.Staff, "staff", false, "grant staff rights")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runCreateUser(rootOpts *RootOptions, opts *CreateUserOptions, cmd *cobra.Command) error {
	_, st, log, err := openStore(rootOpts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	authService := service.NewAuthService(st, nil, validation.New(), log.Logger)
	user, err := authService.CreateUser(cmd.Context(), service.RegisterRequest{
		Email:    opts.Email,
		Password: opts.Password,
		Name:     opts.Name,
	}, opts.Staff)
	if err != nil {
		return describeError(err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s) staff=%t\n", user.ID, user.Email, user.IsStaff)
	return err
}
