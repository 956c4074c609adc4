package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize creates a configuration directory holding the default
// configuration. An existing configuration is left alone.
func Initialize(fs afero.Fs, dir string, logger *log.Logger) error {
	logger.Printf("Initializing configuration in %q\n", dir)
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating %q: %w", dir, err)
	}

	configPath := filepath.Join(dir, ConfigurationName)
	switch _, err := fs.Stat(configPath); {
	case err == nil:
		logger.Printf("- %s already exists, skipping\n", ConfigurationName)
		return nil
	case !os.IsNotExist(err):
		return err
	}

	logger.Printf("- Writing %s\n", ConfigurationName)
	if err := afero.WriteFile(fs, configPath, defaultConfigData, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", ConfigurationName, err)
	}

	logger.Println("Done!")
	return nil
}
