package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/catalograg/internal/auth"
)

var (
	tokenUserID int64
	tokenRole   string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API bearer token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		role, err := auth.ParseRole(tokenRole)
		if err != nil {
			return err
		}
		m := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
		token, err := m.Issue(tokenUserID, role)
		if err != nil {
			return err
		}
		cmd.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 0, "user id placed in the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleCustomer), "customer or admin")
	_ = tokenCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(tokenCmd)
}
