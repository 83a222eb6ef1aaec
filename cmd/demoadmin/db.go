package main

import (
	"fmt"
	"os"

	"airdemo/internal/auth"
	"airdemo/internal/seed"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.st.Migrate(); err != nil {
				return err
			}
			if _, err := a.st.EnsureAdminRole(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample demos and tools that are not stored yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := seed.Bundled()
			if file != "" {
				var b []byte
				if b, err = os.ReadFile(file); err != nil {
					return err
				}
				f, err = seed.Parse(b)
			}
			if err != nil {
				return err
			}
			rep, err := seed.Apply(cmd.Context(), a.st, f, a.lg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "demos: %d created, %d skipped\n", rep.DemosCreated, rep.DemosSkipped)
			fmt.Fprintf(out, "tools: %d created, %d skipped\n", rep.ToolsCreated, rep.ToolsSkipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed YAML file (defaults to the bundled data)")
	return cmd
}

func newCreateAdminCmd(a *app) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or grant the admin role to an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				email = a.cfg.AdminEmail
			}
			if password == "" {
				password = a.cfg.AdminPassword
			}
			accounts := auth.NewService(a.st, auth.NewTokens(a.cfg.JWT))
			id, created, err := seed.CreateAdmin(cmd.Context(), a.st, accounts, email, password, name)
			if err != nil {
				return err
			}
			verb := "granted admin to"
			if created {
				verb = "created admin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, email, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "password for a new account (defaults to ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&name, "name", "", "display name for a new account")
	return cmd
}
