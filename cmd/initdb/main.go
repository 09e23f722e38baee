package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/bootstrap"
	"github.com/MarcosViniicius/projeto-avaria-usointerno/internal/infra/setup"
)

var (
	databaseURL   string
	adminUsername string
	adminEmail    string
	adminPassword string
)

// rootCmd 创建数据表并写入默认管理员和示例商品
var rootCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the database schema and seed initial data",
	Long: `Create the users, products and damage_records tables.

When the admin account does not exist yet, this command also creates it
together with eight sample products (four internal items with barcodes
and four produce items). Running it again is safe.`,
	SilenceUsage: true,
	RunE:         runInitDB,
}

func init() {
	rootCmd.Flags().StringVar(&databaseURL, "database-url", "", "Database URL (default: DATABASE_URL env or sqlite:///app.db)")
	rootCmd.Flags().StringVar(&adminUsername, "admin-username", "admin", "Username of the default admin")
	rootCmd.Flags().StringVar(&adminEmail, "admin-email", "admin@avarias.com", "Email of the default admin")
	rootCmd.Flags().StringVar(&adminPassword, "admin-password", "admin123", "Password of the default admin")
}

func runInitDB(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	log := bootstrap.NewLogger(cfg)

	db, err := setup.InitDB(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	result, err := bootstrap.Seed(cmd.Context(), db, bootstrap.SeedOptions{
		AdminUsername: adminUsername,
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.AdminCreated {
		fmt.Fprintf(out, "Admin user %q created. Change the password after the first login.\n", adminUsername)
	} else {
		fmt.Fprintf(out, "Admin user %q already exists.\n", adminUsername)
	}
	fmt.Fprintf(out, "Users: %d\nProducts: %d\nDamage records: %d\n", result.Users, result.Products, result.Records)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
