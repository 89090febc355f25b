package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
)

func loginCmd(a *app) *cobra.Command {
	var email, password, googleToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or with a Google ID token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				result *domain.AuthResult
				err    error
			)
			if googleToken != "" {
				result, err = a.api.LoginWithGoogle(cmd.Context(), googleToken)
			} else {
				if email == "" || password == "" {
					return errors.New("--email and --password are required")
				}
				result, err = a.api.Login(cmd.Context(), email, password)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s <%s>\n", result.User.Name, result.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&googleToken, "google-token", "", "Google ID token")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.api.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Welcome, %s\n", result.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the cached token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.creds.SignedIn() {
				fmt.Fprintln(a.out, "Not signed in")
				return nil
			}
			if err := a.api.Logout(cmd.Context(), all); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "revoke every session of the account")
	return cmd
}

func profileCmd(a *app) *cobra.Command {
	var name, email, avatar string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the signed-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			var update transport.ProfileUpdateRequest
			if cmd.Flags().Changed("name") {
				update.Name = &name
			}
			if cmd.Flags().Changed("email") {
				update.Email = &email
			}
			if cmd.Flags().Changed("avatar") {
				update.Avatar = &avatar
			}

			var (
				user *domain.User
				err  error
			)
			if update.Name == nil && update.Email == nil && update.Avatar == nil {
				user, err = a.api.Profile(cmd.Context())
			} else {
				user, err = a.api.UpdateProfile(cmd.Context(), update)
				if err == nil {
					err = a.creds.SaveUser(user)
				}
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Name:   %s\nEmail:  %s\n", user.Name, user.Email)
			if user.Avatar != "" {
				fmt.Fprintf(a.out, "Avatar: %s\n", user.Avatar)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new avatar URL")
	return cmd
}

func passwordCmd(a *app) *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Password changed")
			return nil
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "current password")
	cmd.Flags().StringVar(&next, "new", "", "new password")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
