package main

import (
	"fmt"
	"log"
	"os"

	"github.com/richxcame/expense-tracker/pkg/config"
	"github.com/richxcame/expense-tracker/pkg/database"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("expense-migrate")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, os.Args[1:]); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
}

func run(cfg *config.Config, args []string) error {
	direction, err := parseDirection(args)
	if err != nil {
		return err
	}

	if err := database.Migrate(cfg.Database.URL(), direction); err != nil {
		return err
	}

	logger.Info("migrations applied", zap.String("direction", direction))
	return nil
}

// parseDirection defaults to "up"
func parseDirection(args []string) (string, error) {
	if len(args) == 0 {
		return "up", nil
	}
	switch args[0] {
	case "up", "down":
		return args[0], nil
	default:
		return "", fmt.Errorf("usage: migrate [up|down], got %q", args[0])
	}
}
