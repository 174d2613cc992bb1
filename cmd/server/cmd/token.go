package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tefa-events/server/internal/auth"
)

var (
	tokenUserID string
	tokenRole   string
	tokenExpiry time.Duration
)

// tokenCmd mints a JWT with the server's signing config, for local
// testing and operational access.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a JWT for a user",
	Long: `Generate a signed JWT using the configured JWT_SECRET.

The token carries the given subject and role and validates against the
running server.

Examples:
  # Token for an organizer, default 24h lifetime
  server token --user 42f1... --role organizer

  # Short-lived admin token
  server token --user ops --role admin --expiry 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if tokenUserID == "" {
			return fmt.Errorf("--user is required")
		}
		if !auth.ValidRole(tokenRole) {
			return fmt.Errorf("unknown role %q (participant, organizer, admin)", tokenRole)
		}

		expiry := tokenExpiry
		if expiry <= 0 {
			expiry = cfg.Auth.JWTExpiry
		}

		tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, expiry, cfg.Auth.Issuer)
		token, err := tokens.Generate(tokenUserID, auth.NormalizeRole(tokenRole))
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "subject claim (user ID)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "participant", "role claim (participant, organizer, admin)")
	tokenCmd.Flags().DurationVar(&tokenExpiry, "expiry", 0, "token lifetime (default: configured JWT expiry)")
}
