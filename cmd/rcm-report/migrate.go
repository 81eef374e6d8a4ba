package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rcm-benchmark/internal/common/config"
	"rcm-benchmark/internal/common/database"
	"rcm-benchmark/internal/common/logger"
	"rcm-benchmark/internal/reportstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the report archive schema in PostgreSQL",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := newCLILogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Postgres.Enabled() {
		return fmt.Errorf("database.postgres.host is not set")
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Ping(cmd.Context()); err != nil {
		return err
	}
	if err := reportstore.NewPostgresStore(pg.DB).Migrate(cmd.Context()); err != nil {
		return err
	}

	log.Info("report archive schema applied", map[string]interface{}{"database": cfg.Database.Postgres.Database})
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func loadConfig() (*config.Config, error) {
	if cli.ConfigFile != "" {
		return config.LoadFromFile(cli.ConfigFile)
	}
	return config.Load()
}

func newCLILogger() logger.Logger {
	return logger.NewZapAdapter(logger.New(cli.LogLevel, "console", "stderr"))
}
