package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads a .env file into the process environment. ENV_FILE
// names the file explicitly; otherwise every .env between this package and
// the repository root is tried, then ./.env. Set NO_DOTENV=1 to skip and
// DOTENV_OVERLOAD=1 to let the file replace variables already set.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}

	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}

	_, walked := walkToRoot(func(dir string) bool {
		_ = load(filepath.Join(dir, ".env"))
		return false
	})
	if !walked {
		_ = load(".env")
	}
}
