package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string `mapstructure:"app_name"`
		Env              string `mapstructure:"env"`
		Build            string `mapstructure:"build"`
		Debug            bool   `mapstructure:"debug"`
		TestMode         bool   `mapstructure:"test_mode"`
		SecretKey        string `mapstructure:"secret_key"`
		FrontendBaseURL  string `mapstructure:"frontend_base_url"`
		DefaultFromEmail string `mapstructure:"default_from_email"`
		SendgridAPIKey   string `mapstructure:"sendgrid_api_key"`
		RollbarToken     string `mapstructure:"rollbar_token"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
	}

	ServerConfig struct {
		Host                      string        `mapstructure:"host"`
		Port                      string        `mapstructure:"port"`
		DebugHost                 string        `mapstructure:"debug_host"`
		ShutdownTimeout           time.Duration `mapstructure:"shutdown_timeout"`
		JWTExpirationDelta        time.Duration `mapstructure:"jwt_expiration_delta"`
		JWTRefreshExpirationDelta time.Duration `mapstructure:"jwt_refresh_expiration_delta"`
	}

	DatabaseConfig struct {
		Engine       string `mapstructure:"engine"` // sqlite3 | postgres
		Path         string `mapstructure:"path"`   // sqlite3 only
		Host         string `mapstructure:"host"`
		Port         string `mapstructure:"port"`
		Name         string `mapstructure:"name"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		DisableTLS   bool   `mapstructure:"disable_tls"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
	}
)

func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

// NewConfig loads the configuration from the environment, on top of the defaults below.
// Keys map to env vars prefixed with LMS_, e.g. database.path -> LMS_DATABASE_PATH.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetDefault("app_name", "TKA Learning")
	v.SetDefault("env", "DEV")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("test_mode", false)
	v.SetDefault("secret_key", "3v$7xq!k@l9w^pz1m#c8r&n2b(u5t)h0-j4g6f=d+s")
	v.SetDefault("frontend_base_url", "http://localhost:3000")
	v.SetDefault("default_from_email", "TKA Learning <noreply@localhost>")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("rollbar_token", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debug_host", ":4000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.jwt_expiration_delta", 7*24*time.Hour)
	v.SetDefault("server.jwt_refresh_expiration_delta", 4*7*24*time.Hour)

	v.SetDefault("database.engine", "sqlite3")
	v.SetDefault("database.path", "lms.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "lms")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disable_tls", false)
	v.SetDefault("database.max_open_conns", 4)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("test_mode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetDefault("env", env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix("LMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	return conf
}
