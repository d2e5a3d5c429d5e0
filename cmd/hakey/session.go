package main

import (
	"github.com/spf13/cobra"
	"hakey-storefront/internal/service/account"
)

func (c *cli) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Manage the local session"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the signed-in profile",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			st := c.core.Session.State()
			return c.print(map[string]any{
				"user":            st.User,
				"isAuthenticated": st.IsAuthenticated(),
			})
		},
	}

	var login account.LoginInput
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.core.Accounts.Login(cmd.Context(), login)
			if err != nil {
				return err
			}
			return c.print(p)
		},
	}
	loginCmd.Flags().StringVar(&login.Email, "email", "", "email")
	loginCmd.Flags().StringVar(&login.Password, "password", "", "password")

	var reg account.RegisterInput
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create a local profile and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reg.ConfirmPassword == "" {
				reg.ConfirmPassword = reg.Password
			}
			p, err := c.core.Accounts.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return c.print(p)
		},
	}
	registerCmd.Flags().StringVar(&reg.Name, "name", "", "display name")
	registerCmd.Flags().StringVar(&reg.Email, "email", "", "email")
	registerCmd.Flags().StringVar(&reg.Phone, "phone", "", "phone (optional)")
	registerCmd.Flags().StringVar(&reg.Password, "password", "", "password")
	registerCmd.Flags().StringVar(&reg.ConfirmPassword, "confirm", "", "password confirmation (defaults to --password)")
	registerCmd.Flags().BoolVar(&reg.AcceptTerms, "accept-terms", false, "accept the terms and conditions")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.core.Session.Logout(cmd.Context())
			return c.print(map[string]any{"isAuthenticated": false})
		},
	}

	cmd.AddCommand(show, loginCmd, registerCmd, logout)
	return cmd
}
