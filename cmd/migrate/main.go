package main

import (
	"flag"
	"log"

	"freight/cmd"

	"go.uber.org/zap"
)

func main() {
	steps := flag.Int("steps", 0, "migrations to roll back with down, or the version to force")
	flag.Parse()

	action := flag.Arg(0)
	if action == "" {
		action = "up"
	}

	cfg, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cmd.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := cmd.OpenDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}

	m, err := cmd.NewMigrator(sqlDB)
	if err != nil {
		logger.Fatal("migrator", zap.Error(err))
	}
	defer func() { _, _ = m.Close() }()

	if err := cmd.RunMigrations(m, action, *steps, logger); err != nil {
		logger.Fatal("migrate "+action, zap.Error(err))
	}
}
