// Package cmd holds the cinexnema command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/RigelNana/cinexnema/pkg/logger"
	"github.com/RigelNana/cinexnema/services/video-service/config"
)

// Version is set at build time with -ldflags "-X ...cmd.Version=...".
var Version = "dev"

var (
	logLevel  string
	logFormat string
	envFile   string
)

var rootCmd = &cobra.Command{
	Use:           "cinexnema",
	Short:         "cinexnema serves the video upload and moderation API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "logging level, overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "logging format, json or text; overrides LOG_FORMAT")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file")

	rootCmd.AddCommand(getServeCmd())
	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getBucketsCmd())
	rootCmd.AddCommand(getVersionCmd())
}

// Execute runs the root command. Called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the logger shared by every subcommand.
func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		if logFormat != logger.FormatJSON && logFormat != logger.FormatText {
			return nil, nil, fmt.Errorf("log format must be %q or %q", logger.FormatJSON, logger.FormatText)
		}
		cfg.Log.Format = logFormat
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func getVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
