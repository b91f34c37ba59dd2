package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"boxstudio/internal/shared/config"
	"boxstudio/internal/shared/database"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app carries what the subcommands share once the root has loaded configuration
type app struct {
	envFile string
	cfg     *config.Config
}

// NewRootCommand builds a fresh command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "studioctl",
		Short: "studioctl - operate the boxing studio backend",
		Long: `studioctl works directly against the studio database.

Examples:
  studioctl seed                 # Reset and load demo data
  studioctl facts                # Print the facts snapshot as JSON
  studioctl window --start 2026-03-01T00:00:00Z --end 2026-03-31T23:59:59Z
  studioctl token --subject coach`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.loadConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load if present")

	rootCmd.AddCommand(newSeedCommand(a))
	rootCmd.AddCommand(newFactsCommand(a))
	rootCmd.AddCommand(newKPIsCommand(a))
	rootCmd.AddCommand(newWindowCommand(a))
	rootCmd.AddCommand(newTokenCommand(a))

	return rootCmd
}

func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) loadConfig() error {
	// A missing file is fine; the environment may already be populated
	_ = godotenv.Load(a.envFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// openDB connects and migrates. The returned func closes the pool.
func (a *app) openDB() (*gorm.DB, func(), error) {
	db, err := database.OpenPostgreSQL(a.cfg.Database, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
