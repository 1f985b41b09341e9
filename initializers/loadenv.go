package initializers

import (
	"github.com/joho/godotenv"
)

// LoadEnv loads .env when present. It does not log since the logger is
// configured from the values it loads; callers report the error after
// SetupLogger. A missing file is expected in deployments that set the
// variables directly.
func LoadEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}
