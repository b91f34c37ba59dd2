package cli

import (
	"fmt"
	"time"

	"boxstudio/internal/shared/middleware"

	"github.com/spf13/cobra"
)

func newTokenCommand(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed admin bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			authCfg := a.cfg.Auth
			if ttl > 0 {
				authCfg.JWTExpiresIn = ttl
			}
			token, err := middleware.IssueAdminToken(authCfg, subject, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to AUTH_JWT_EXPIRES_IN)")
	return cmd
}
