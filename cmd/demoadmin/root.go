package main

import (
	"context"
	"errors"
	"fmt"

	"airdemo/internal/config"
	"airdemo/internal/logger"
	"airdemo/internal/models"
	"airdemo/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once the database is open.
type app struct {
	cfg     *config.Config
	lg      *zap.SugaredLogger
	st      *store.Store
	closeDB func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "demoadmin",
		Short:        "Operate the demo showcase database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newCreateAdminCmd(a),
		newDemosCmd(a),
		newToolsCmd(a),
		newFlowCmd(a),
	)
	return root
}

func (a *app) open() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	lg := logger.New(cfg.LogLevel)
	db, err := store.Open(cfg.Database, lg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	a.cfg, a.lg, a.st, a.closeDB = cfg, lg, store.New(db), sqlDB.Close
	return nil
}

func (a *app) close() error {
	if a.closeDB == nil {
		return nil
	}
	_ = a.lg.Sync()
	return a.closeDB()
}

// demo resolves ref as an id first and a slug second.
func (a *app) demo(ctx context.Context, ref string) (*models.Demo, error) {
	d, err := a.st.GetDemo(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		d, err = a.st.GetDemoBySlug(ctx, ref)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("demo %q not found", ref)
	}
	return d, err
}
