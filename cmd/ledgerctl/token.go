package main

import (
	"fmt"
	"time"

	"ledger-service/internal/auth"
	"ledger-service/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	tokenUser   string
	tokenTenant string
	tokenRole   string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a signed JWT for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch tokenRole {
		case auth.RoleAdmin, auth.RoleManager, auth.RoleStaff, auth.RoleViewer:
		default:
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		if tokenUser == "" || tokenTenant == "" {
			return fmt.Errorf("--user and --tenant are required")
		}

		cfg := config.Load()
		token, err := auth.NewJWTManager(cfg.JWTSecret, zap.NewNop()).
			WithTTL(tokenTTL).
			GenerateToken(tokenUser, tokenTenant, tokenRole)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User id (token subject)")
	tokenCmd.Flags().StringVar(&tokenTenant, "tenant", "", "Tenant id")
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleStaff, "Role: admin, manager, staff or viewer")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
