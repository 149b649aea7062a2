package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"newsdesk/auth"
	"newsdesk/config"
	"newsdesk/database"
	"newsdesk/repository"

	"github.com/spf13/cobra"
)

func newEnsureAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-admin",
		Short: "Create the indexes and the admin identity if missing",
		Long: `Connect to MONGODB_URI, create the collection indexes and insert the admin
identity (ADMIN_USERNAME / ADMIN_PASSWORD) unless it already exists. Safe to re-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.Store != "mongo" {
				return errors.New("ensure-admin needs STORE=mongo")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db := database.New(cfg.MongoURI, cfg.MongoDatabase)
			if err := db.Connect(ctx); err != nil {
				return err
			}
			defer db.Disconnect(context.Background())

			if err := db.EnsureIndexes(ctx); err != nil {
				return err
			}
			return ensureAdmin(ctx, cmd.OutOrStdout(), repository.NewUsers(db), cfg.AdminUsername, cfg.AdminPassword)
		},
	}
}

func ensureAdmin(ctx context.Context, out io.Writer, users auth.UserStore, username, password string, opts ...auth.Option) error {
	creds, err := auth.NewCredentialStore(users, username, password, opts...)
	if err != nil {
		return err
	}
	if err := creds.EnsureDefaultIdentity(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "admin identity %q is present\n", username)
	return nil
}
