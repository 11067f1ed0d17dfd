package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"golfwear-extractor/internal/config"
)

var (
	brandFlag     string
	configDirFlag string
	verboseFlag   bool

	settings *config.Settings
	logger   *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "golfwear",
	Short:         "golfwear crawls Japanese golf apparel storefronts and assembles Bitable-ready records.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings()
		if err != nil {
			return err
		}
		settings = s
		if configDirFlag == "" {
			configDirFlag = settings.ConfigDir
		}
		logger = newLogger(settings.LogLevel, verboseFlag)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&brandFlag, "brand", "", "Brand id, the name of a config file under --config-dir")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Directory holding brand configs (default from settings)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable verbose logging")
}

// newLogger sets up logrus the same way for every command. LOG_LEVEL wins
// over settings, --verbose only applies when neither names a level.
func newLogger(level string, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	} else if verbose {
		level = "debug"
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
