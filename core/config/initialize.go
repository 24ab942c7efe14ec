package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into dir, creating it if
// needed, and loads it. An existing config.yaml is left untouched.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return InitializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), func(name string) {
		logger.Printf("Created %s", filepath.Join(dir, name))
	}, func(name string) {
		logger.Printf("Keeping existing %s", filepath.Join(dir, name))
	})
}

// InitializeFs writes the default configuration into the root of configFs.
// The callbacks report which files were created or kept.
func InitializeFs(configFs afero.Fs, created, kept func(name string)) (*Configuration, error) {
	_, err := configFs.Stat(ConfigurationName)
	switch {
	case err == nil:
		kept(ConfigurationName)
	case errors.Is(err, fs.ErrNotExist):
		if err := afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
		created(ConfigurationName)
	default:
		return nil, err
	}

	return LoadFs(configFs)
}
