package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`
	AppEnv       string `mapstructure:"APP_ENV"`

	// Remote Data Service (Supabase-style PostgREST endpoint).
	SupabaseURL            string `mapstructure:"SUPABASE_URL"`
	SupabaseSecretKey      string `mapstructure:"SUPABASE_SECRET_KEY"`
	SupabasePublishableKey string `mapstructure:"SUPABASE_PUBLISHABLE_KEY"`

	// Path of the local mirror snapshot file.
	MirrorPath string `mapstructure:"MIRROR_PATH"`

	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	// Optional delivery-status email. Empty EmailFrom or EmailTo disables
	// the mailer.
	EmailFrom string `mapstructure:"EMAIL_FROM"`
	EmailTo   string `mapstructure:"EMAIL_TO"`
	AWSRegion string `mapstructure:"AWS_REGION"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env") // Name of config file (without extension)
	viper.SetConfigType("env")

	viper.AutomaticEnv() // Read in environment variables that match

	err := viper.ReadInConfig() // Find and read the config file
	if err != nil {
		// Handle errors reading the config file, but allow it if it's just "not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.MirrorPath == "" {
		cfg.MirrorPath = "logitrack_remote_db.json"
	}

	return &cfg, nil
}
