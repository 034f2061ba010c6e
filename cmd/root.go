package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"night-attendance-backend/internal/platform/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "night-attendance",
	Short: "Hostel night attendance backend",
	Long: `Night Attendance serves the hostel attendance API (geofenced login,
face-verified marking, warden summaries) and carries the maintenance
commands used to migrate and seed its MySQL database.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "Path to the YAML config file")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}
