package config

import (
	"fmt"
	"log"
	"os"

	"github.com/seowliyuan/nutriadmin/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds everything read from the environment. The datastore is a
// managed Postgres instance; DATABASE_URL takes precedence over the
// individual DB_* variables.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string // Supabase project JWT secret (access tokens are HS256)
	AdminOrigin string // origin of the dashboard, for CORS
	FoodSource  string // optional: force the active food source by name
	AutoMigrate bool   // manage canonical tables; off when the schema is owned upstream
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on environment")
	}

	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("SUPABASE_JWT_SECRET"),
		AdminOrigin: getenv("ADMIN_ORIGIN", "http://localhost:3000"),
		FoodSource:  os.Getenv("FOOD_SOURCE"),
		AutoMigrate: os.Getenv("AUTO_MIGRATE") == "true",
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			getenv("DB_PORT", "5432"),
		)
	}
	return cfg
}

// OpenDB connects to the backing store and, when asked, migrates the
// canonical tables. The locale food table is never migrated here: it is
// inherited data and its absence is what the catalog probe detects.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(
			&models.Profile{},
			&models.Food{},
			&models.APKVersion{},
			&models.Avatar{},
		); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
