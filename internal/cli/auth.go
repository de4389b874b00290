package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/beehive-tools/hivecli/internal/auth"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/tui/common"
	"github.com/spf13/cobra"
)

func newAuthCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the API token",
	}

	var token string
	login := &cobra.Command{
		Use:   "login",
		Short: "Store an API token in the keychain",
		Long: `Store an API token in the keychain.

The token is read from --token or, if omitted, from the first line of
standard input. ` + auth.EnvToken + ` takes priority over the keychain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			creds := &models.Credentials{Token: strings.TrimSpace(token)}
			if !creds.IsValid() {
				return fmt.Errorf("token must not be blank")
			}
			if err := env.credentialStore().Save(creds); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), common.SuccessTextStyle.Render("Token saved to keychain."))
			return nil
		},
	}
	login.Flags().StringVar(&token, "token", "", "API token")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the API token from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.credentialStore().Delete(); err != nil {
				return fmt.Errorf("remove token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token removed from keychain.")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where the API token comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			creds, source, err := env.Resolver.Resolve()
			switch {
			case errors.Is(err, auth.ErrNoCredentials):
				fmt.Fprintln(out, "No API token configured; requests are anonymous.")
				return nil
			case err != nil:
				return fmt.Errorf("read token: %w", err)
			}
			fmt.Fprintf(out, "Token from %s: %s\n", source, maskToken(creds.Token))
			return nil
		},
	}

	cmd.AddCommand(login, logout, status)
	return cmd
}

func (env *Env) credentialStore() auth.CredentialStore {
	if env.Resolver != nil && env.Resolver.Store != nil {
		return env.Resolver.Store
	}
	return auth.NewKeychainStore()
}

// maskToken shows only the first and last 2 characters
func maskToken(s string) string {
	if len(s) <= 6 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
