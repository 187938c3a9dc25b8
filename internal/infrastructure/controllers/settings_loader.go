package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

// loadSettings reads the file given with --config, or the first file found in the default locations.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		var err error
		configPath, err = entities.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w (specify one with --config or create gitbridge.yaml)", err)
		}
	}

	logger.Debugf("Using config file: %s", configPath)
	return entities.NewSettings(configPath)
}
