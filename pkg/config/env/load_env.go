package env

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from .env files.
// ENV_PATH overrides the default paths; a missing file is only an error when ENV_PATH names it.
// Variables already present in the process environment are never overwritten.
func LoadDotEnv(env string, defaultPaths ...string) error {
	if p := os.Getenv("ENV_PATH"); p != "" {
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load env file %s: %w", p, err)
		}
		return nil
	}

	for _, p := range defaultPaths {
		err := godotenv.Load(p)
		switch {
		case err == nil:
			slog.Debug("Loaded .env", "path", p, "env", env)
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("Skipping .env ...", "path", p, "env", env)
		default:
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}
