package config

import (
	"github.com/gatherly/gatherly/internal/env"

	"go.uber.org/zap"
)

const (
	PortEnv         = "PORT"
	DatabasePathEnv = "DATABASE_PATH"
)

type Config struct {
	Logger *zap.Logger

	Port         int
	DatabasePath string
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, err
	}

	port := env.GetIntOrDefault(PortEnv, 8080)
	databasePath := env.GetStringOrDefault(DatabasePathEnv, "./database")

	return Config{
		Logger:       logger,
		Port:         port,
		DatabasePath: databasePath,
	}, nil
}
