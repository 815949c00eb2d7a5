package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/andiamooltre/oltreweb/internal/auth"
	"github.com/andiamooltre/oltreweb/internal/config"
	"github.com/andiamooltre/oltreweb/internal/content"
	"github.com/andiamooltre/oltreweb/internal/database"
)

var errSeedArgs = errors.New("email and password are required")

// seedCmd bootstraps the first admin account and the default home section so a fresh
// deployment is immediately usable.
func seedCmd() *cobra.Command {
	var (
		email    string
		password string
		homeText string
	)

	command := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				return errSeedArgs
			}

			conf, errConfig := config.Read(configFile)
			if errConfig != nil {
				return errConfig
			}

			if conf.DB.DSN == "" {
				return config.ErrMissingDSN
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db := database.New(conf.DB.DSN, true, conf.DB.LogQueries)
			if errConnect := db.Connect(ctx); errConnect != nil {
				return errConnect
			}

			defer func() {
				_ = db.Close()
			}()

			admin, errAdmin := auth.NewAdmin(email, password)
			if errAdmin != nil {
				return errAdmin
			}

			if errSave := auth.NewRepository(db).SaveAdmin(ctx, &admin); errSave != nil {
				if errors.Is(errSave, database.ErrDuplicate) {
					slog.Info("Admin already exists, skipping", slog.String("email", admin.Email))
				} else {
					return errSave
				}
			} else {
				slog.Info("Created admin", slog.String("email", admin.Email))
			}

			if homeText != "" {
				section := content.Section{Key: content.SectionHomeDescription, Content: homeText}
				if errSection := content.NewRepository(db).Save(ctx, &section); errSection != nil {
					return errSection
				}

				slog.Info("Seeded home description")
			}

			return nil
		},
	}

	command.Flags().StringVar(&email, "email", "", "admin email address")
	command.Flags().StringVar(&password, "password", "", "admin password")
	command.Flags().StringVar(&homeText, "home-text", "", "initial home description text")

	return command
}
