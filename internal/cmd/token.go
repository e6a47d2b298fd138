package cmd

import (
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"storefront-service/internal/auth"
	"storefront-service/internal/config"
	"time"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed bearer token for local development",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "dev_admin", "user id to put in the subject claim")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleAdmin), "role claim: admin or customer")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not set")
	}

	role := auth.Role(tokenRole)
	if role != auth.RoleAdmin && role != auth.RoleCustomer {
		return fmt.Errorf("unknown role %q", tokenRole)
	}

	tkn, err := auth.IssueToken([]byte(cfg.Auth.JWTSecret), tokenUser, role, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tkn)
	return nil
}
