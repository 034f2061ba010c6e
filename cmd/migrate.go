package cmd

import (
	"github.com/spf13/cobra"

	"night-attendance-backend/internal/platform/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		conn, err := db.Connect(cfg.DB)
		if err != nil {
			return err
		}
		defer conn.Close()
		return db.Migrate(cmd.Context(), conn)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
