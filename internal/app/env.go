package app

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads one or more dotenv files into the process environment.
// Later files override earlier ones and both override the inherited
// environment. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		for k, v := range vals {
			if err := os.Setenv(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}
