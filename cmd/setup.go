package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/parthero/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back last migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	} else {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	for _, s := range states {
		r.logger.Debug("migration", "version", s.Version, "applied", s.Applied)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupSession stores the browser session used by the assets commands.
//
// Accepts a cURL command copied from the browser's network tab.
func (r *Runner) SetupSession(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	outputPath := cmd.String("output")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	session, err := curlHeaders.ToSession()
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = r.config.Server.SessionPath
	}
	if outputPath == "" {
		return fmt.Errorf("%w: --output or server.session_path is required", shared.ErrMissingArgument)
	}

	if err := shared.SaveSession(outputPath, session); err != nil {
		return err
	}

	r.logger.Info("session saved", "path", outputPath)

	r.writePlain("✓ Session saved to: %s\n", outputPath)
	if session.BaseURL != "" && session.BaseURL != r.config.Server.BaseURL {
		r.writePlainln("Note: the session was copied from %s but server.base_url is %q", session.BaseURL, r.config.Server.BaseURL)
	}
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'parthero assets list --piece <id>' to test the session\n")

	return nil
}
