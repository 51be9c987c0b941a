package dotenv

import (
	"os"
	"path"
	"runtime"

	"github.com/joho/godotenv"
)

// LoadDotEnvs loads environment variables from the .env file at the
// repository root, falling back to .env.<DEVHUB_ENV> when present.
// Missing files are not an error so that production deployments that
// inject env vars directly keep working.
func LoadDotEnvs() error {
	root := repositoryRoot()

	env := os.Getenv("DEVHUB_ENV")
	if len(env) > 0 {
		if err := godotenv.Load(path.Join(root, ".env."+env)); err == nil {
			return nil
		}
	}

	if err := godotenv.Load(path.Join(root, ".env")); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// repositoryRoot resolves the repo root relative to this source file so
// that tests running from nested package directories pick up the same
// .env file as cmd binaries.
func repositoryRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return path.Join(path.Dir(filename), "../..")
}
