package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	dbpkg "github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Dashboard account commands",
	}
	cmd.AddCommand(newAdminCreateCommand())
	return cmd
}

func newAdminCreateCommand() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a dashboard admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return errors.New("password must have at least 8 characters")
			}

			cfg, log := bootstrap()

			db, err := dbpkg.Open(cfg)
			if err != nil {
				return err
			}

			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			admin := models.Admin{
				Name:         strings.TrimSpace(name),
				Email:        strings.ToLower(strings.TrimSpace(email)),
				PasswordHash: string(hashed),
			}
			if err := db.Create(&admin).Error; err != nil {
				return err
			}

			log.Info("admin created", "id", admin.ID, "email", admin.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
