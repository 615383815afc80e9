package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"StockScanner/internal/config"
	"StockScanner/internal/logging"
)

var (
	cfg       *config.Config
	logCloser io.Closer
)

var RootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "stock indicator scanner",
	Long:  "computes technical indicators for a watchlist, scores them and alerts over telegram",

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dotenv := viper.GetString("dotenv"); dotenv != "" {
			if _, err := os.Stat(dotenv); err == nil {
				if err := godotenv.Load(dotenv); err != nil {
					return fmt.Errorf("load %s: %w", dotenv, err)
				}
			}
		}

		c, err := config.Load(viper.GetString("config"))
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		cfg = c

		logCloser = logging.Setup(log.StandardLogger(), logging.Options{
			Debug:      viper.GetBool("debug"),
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "debug flag")
	RootCmd.PersistentFlags().String("config", "configs/config.yaml", "config file")
	RootCmd.PersistentFlags().String("dotenv", ".env", "dotenv file loaded before the config")

	RootCmd.AddCommand(serveCmd, scanCmd, computeCmd)
}

func Execute() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetEnvPrefix("scanner")

	// SCANNER_DEBUG, SCANNER_CONFIG
	viper.AutomaticEnv()

	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		log.WithError(err).Errorf("failed to bind persistent flags. please check the flag settings.")
	}

	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Fatalf("cannot execute command")
	}
}
