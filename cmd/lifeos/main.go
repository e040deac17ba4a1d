// Command lifeos runs the journal API server and its maintenance tasks.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lifeos/internal/config"
	logpkg "github.com/kailas-cloud/lifeos/internal/logger"
	"github.com/kailas-cloud/lifeos/internal/version"
)

var (
	envName string
	cfg     config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "lifeos",
	Short:         "Journal, habits and semantic search backend",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		if !cmd.Flags().Changed("env") {
			envName = config.GetEnv()
		}

		var err error
		cfg, err = config.Load(envName)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = logpkg.NewLogger(logpkg.Options{
			Env:     envName,
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Service: "lifeos",
		})
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "local",
		"configuration environment (config/<env>.yaml); defaults to $ENV")
	rootCmd.AddCommand(serveCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lifeos:", err)
		os.Exit(1)
	}
}
