package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vispana/apppackage-client/apppackage"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/config"
	"github.com/vispana/apppackage-client/remote"
)

var (
	logLevel         string
	logColorDisabled bool

	envFile    string
	configHost string
	timeout    time.Duration

	conf *config.Config

	rootCmd = &cobra.Command{
		Use:   "apppackage-client",
		Short: "Client to browse and download the application package deployed on a config server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLog()
			initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logrus.InfoLevel.String(), "Log level")
	rootCmd.PersistentFlags().BoolVar(&logColorDisabled, "log-color-disabled", false, "Force to disable colorful logs")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load configuration from, .env by default")
	rootCmd.PersistentFlags().StringVar(&configHost, "config-host", "", "Config server host, e.g. localhost or http://localhost:19071 (env APPPKG_CONFIG_HOST)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Timeout of a single remote call (env APPPKG_REQUEST_TIMEOUT)")
}

func initLog() {
	formatter := logrus.TextFormatter{
		FullTimestamp: true,
	}

	if logColorDisabled {
		formatter.DisableColors = true
	} else {
		formatter.ForceColors = true
	}

	logrus.SetFormatter(&formatter)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.WithError(err).WithField("level", logLevel).Fatal("Failed to parse log level")
	}

	logrus.SetLevel(level)
}

// initConfig loads the configuration; explicit flags take precedence over it.
func initConfig(cmd *cobra.Command) {
	var err error
	if len(envFile) > 0 {
		conf, err = config.Load(envFile)
	} else {
		conf, err = config.Load()
	}

	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if !cmd.Flags().Changed("config-host") {
		configHost = conf.ConfigHost
	}

	if !cmd.Flags().Changed("timeout") {
		timeout = conf.RequestTimeout
	}

	logrus.WithFields(logrus.Fields{
		"configHost": configHost,
		"timeout":    timeout,
	}).Debug("Configuration loaded")
}

func newService() *apppackage.Service {
	client := remote.NewClient(remote.ClientOption{
		Timeout:   timeout,
		LogOption: common.StandardLogOption(),
	})

	return apppackage.NewService(client, common.StandardLogOption())
}

func mustConfigHost() string {
	if len(configHost) == 0 {
		logrus.Fatal("Config host not specified, use --config-host or APPPKG_CONFIG_HOST")
	}
	return configHost
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		logrus.WithError(err).Fatal("Failed to print result")
	}
}

// Execute is the command line entrypoint.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
