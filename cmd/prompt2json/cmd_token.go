package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/prompt2json/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		email  string
		name   string
		avatar string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		Long: `Token signs an access token with SUPABASE_JWT_SECRET in the same shape
the identity provider issues, for calling protected routes locally:

  curl -H "Authorization: Bearer $(prompt2json token --email me@example.com)" \
       localhost:8080/conversions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("SUPABASE_JWT_SECRET")
			if secret == "" {
				return errors.New("SUPABASE_JWT_SECRET is not set")
			}

			tokens, err := auth.NewTokenService(secret, os.Getenv("SUPABASE_JWT_ISSUER"))
			if err != nil {
				return err
			}

			tok, err := tokens.Issue(auth.Identity{
				Subject:   email,
				Email:     email,
				Name:      name,
				AvatarURL: avatar,
			}, ttl)
			if err != nil {
				return fmt.Errorf("issuing token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email claim (required)")
	cmd.Flags().StringVar(&name, "name", "", "Full name claim")
	cmd.Flags().StringVar(&avatar, "avatar-url", "", "Avatar URL claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
