package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session for later commands",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("TIMESHEET_PASSWORD")
		}
		if loginEmail == "" || password == "" {
			return errors.New("both --email and --password (or TIMESHEET_PASSWORD) are required")
		}

		sess, err := env.sessions.Login(ctx, loginEmail, password)
		if err != nil {
			return err
		}
		okColor.Printf("Signed in as %s (%s)\n", sess.User.Name, sess.Role)
		dimColor.Printf("session valid until %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: withClient(func(ctx context.Context, env *clientEnv, _ []string) error {
		if env.sessions.Token() != "" {
			// the token itself stays valid until it expires
			_ = env.api.Post(ctx, "/auth/logout", nil, nil)
		}
		if err := env.sessions.Logout(ctx); err != nil {
			return err
		}
		okColor.Println("Signed out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: withClient(func(_ context.Context, env *clientEnv, _ []string) error {
		sess, ok := env.sessions.Current()
		if !ok {
			return errors.New("not logged in")
		}
		fmt.Printf("%s <%s>\n", sess.User.Name, sess.User.Email)
		fmt.Printf("role:       %s\n", sess.Role)
		fmt.Printf("department: %s\n", optional(sess.User.DepartmentID))
		dimColor.Printf("expires:    %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	}),
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
