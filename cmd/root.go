// Package cmd implements the command-line interface for the result claim
// service.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/certifiedsliders/resultclaims/cmd/migrate"
	"github.com/certifiedsliders/resultclaims/cmd/results"
	"github.com/certifiedsliders/resultclaims/cmd/serve"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "resultclaims",
		Short: "Athlete result claim and verification service",
		Long:  `Verifies athlete-submitted result links against their verified external profiles and stores the canonical records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to viper.
	_ = godotenv.Load()

	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("resultclaims version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(serve.Command())
	rootCmd.AddCommand(migrate.Command())
	rootCmd.AddCommand(results.Command())
}

// initConfig reads the config file and environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; defaults and environment cover the rest.
		fmt.Fprintf(os.Stderr, "Warning: config file not found: %v\n", err)
	}

	return bindEnvVars()
}

// bindEnvVars maps well-known environment variables to config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"database.host":     {"DB_HOST"},
		"database.port":     {"DB_PORT"},
		"database.user":     {"DB_USER"},
		"database.password": {"DB_PASSWORD"},
		"database.database": {"DB_NAME"},
		"redis.addr":        {"REDIS_ADDR"},
		"redis.password":    {"REDIS_PASSWORD"},
		"logging.level":     {"LOG_LEVEL"},
	}

	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return nil
}
