package cmd

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	authmodels "github.com/RigelNana/cinexnema/services/auth-service/models"
	usermodels "github.com/RigelNana/cinexnema/services/user-service/models"
	"github.com/RigelNana/cinexnema/services/video-service/database"
)

// migrateAll creates every table, identity tables included.
func migrateAll(db *gorm.DB) error {
	return database.Migrate(db, &usermodels.User{}, &authmodels.Auth{})
}

func getMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			db, err := database.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			if err := migrateAll(db); err != nil {
				return err
			}
			log.Info("schema migrated")
			return nil
		},
	}
}
