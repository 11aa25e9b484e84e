package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	BackendConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	PortalConfig struct {
		Address         string
		CookieName      string
		SessionStore    string // memory | redis | postgres
		DisableReqLogs  bool
		ShutdownTimeout time.Duration
	}

	SessionConfig struct {
		TTL time.Duration
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	CLIConfig struct {
		StatePath string
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string

		Backend  BackendConfig
		Portal   PortalConfig
		Session  SessionConfig
		Redis    RedisConfig
		Database DatabaseConfig
		CLI      CLIConfig
	}
)

func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig loads the configuration from the environment and the optional `config/.env.<env>` file.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Classroom")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "s3cr3t-k#y-ch4nge-me-in-pr0d")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("backend.baseURL", "http://localhost:5000")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("portal.address", ":8080")
	v.SetDefault("portal.cookieName", "classroom_session")
	v.SetDefault("portal.sessionStore", "memory")
	v.SetDefault("portal.disableReqLogs", false)
	v.SetDefault("portal.shutdownTimeout", 5*time.Second)
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "classroom")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("cli.statePath", defaultStatePath())

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "config"
	}
	dotEnvPath := filepath.Join(dir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("backend.baseURL"), "/"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Portal: PortalConfig{
			Address:         v.GetString("portal.address"),
			CookieName:      v.GetString("portal.cookieName"),
			SessionStore:    strings.ToLower(v.GetString("portal.sessionStore")),
			DisableReqLogs:  v.GetBool("portal.disableReqLogs"),
			ShutdownTimeout: v.GetDuration("portal.shutdownTimeout"),
		},
		Session: SessionConfig{
			TTL: v.GetDuration("session.ttl"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		CLI: CLIConfig{
			StatePath: v.GetString("cli.statePath"),
		},
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".classroom", "state.db")
	}
	return filepath.Join(home, ".classroom", "state.db")
}
