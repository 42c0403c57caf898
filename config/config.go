package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config
// files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		URL string
	}
	JWT struct {
		Secret   string
		Issuer   string
		Audience string
		TokenTTL time.Duration
	}
	Email struct {
		APIKey          string
		From            string
		AppName         string
		ClientBaseURL   string
		ConfirmationTTL time.Duration
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	Admin struct {
		Email    string
		Password string
	}
	Seed bool
}

// Load reads configuration from environment variables and an optional
// config file. A local .env is loaded first, without overriding the real
// environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CINETECA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.url", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "cineteca")
	v.SetDefault("jwt.audience", "cineteca-client")
	v.SetDefault("jwt.tokenttl", 15*time.Minute)
	v.SetDefault("email.apikey", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.appname", "Cineteca")
	v.SetDefault("email.clientbaseurl", "http://localhost:3000")
	v.SetDefault("email.confirmationttl", 20*time.Minute)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "posters")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("admin.email", "admin@localhost")
	v.SetDefault("admin.password", "")
	v.SetDefault("seed", false)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
