package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

type Config struct {
	port                   string
	cloudSQLUnixSocketPath string
	dBPassword             string
	dBUsername             string
	sentryDSN              string
	gcpProject             string
	achievementsFile       string
	notificationWebhookURL string
	env                    environment
}

type rawConfig struct {
	Environment            string `env:"PUTTLOG_ENVIRONMENT"`
	Port                   string `env:"PORT" envDefault:"8080"`
	CloudSQLUnixSocketPath string `env:"CLOUDSQL_UNIX_SOCKET"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBUsername             string `env:"DB_USERNAME"`
	SentryDSN              string `env:"SENTRY_DSN"`
	GCPProject             string `env:"GOOGLE_CLOUD_PROJECT"`
	AchievementsFile       string `env:"ACHIEVEMENTS_FILE"`
	NotificationWebhookURL string `env:"NOTIFICATION_WEBHOOK_URL"`
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) CloudSQLUnixSocketPath() string {
	return c.cloudSQLUnixSocketPath
}

func (c *Config) DBPassword() string {
	return c.dBPassword
}

func (c *Config) DBUsername() string {
	return c.dBUsername
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

// Google Cloud project used to correlate logs with traces. Empty if not running in GCP.
func (c *Config) GCPProject() string {
	return c.gcpProject
}

// Path to a JSON file overriding the built-in achievement definitions. Empty for the built-in catalog.
func (c *Config) AchievementsFile() string {
	return c.achievementsFile
}

// Where to POST achievement unlock events. Empty to only log them.
func (c *Config) NotificationWebhookURL() string {
	return c.notificationWebhookURL
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, achievementsFile: %q, webhook: %t, ...}",
		string(c.env),
		c.port,
		c.achievementsFile,
		c.notificationWebhookURL != "",
	)
}

func ConfigFromEnv() (Config, error) {
	return configFromEnvironment(nil)
}

// Parse the given environment, or the process environment if environ is nil
func configFromEnvironment(environ map[string]string) (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	raw, err := env.ParseAsWithOptions[rawConfig](opts)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	var environment environment
	switch raw.Environment {
	case "":
		return missingKey("PUTTLOG_ENVIRONMENT")
	case "production":
		environment = production
	case "staging":
		environment = staging
	case "development":
		environment = development
	default:
		return Config{}, fmt.Errorf("%w: PUTTLOG_ENVIRONMENT (%s)", ErrInvalidValue, raw.Environment)
	}
	if string(environment) == "" {
		panic("logic error: env is empty")
	}

	if raw.Port == "" {
		return missingKey("PORT")
	}

	if environment == production || environment == staging {
		if raw.CloudSQLUnixSocketPath == "" {
			return missingKey("CLOUDSQL_UNIX_SOCKET")
		}
		if raw.DBUsername == "" {
			return missingKey("DB_USERNAME")
		}
		if raw.DBPassword == "" {
			return missingKey("DB_PASSWORD")
		}
		if raw.SentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		port:                   raw.Port,
		cloudSQLUnixSocketPath: raw.CloudSQLUnixSocketPath,
		dBPassword:             raw.DBPassword,
		dBUsername:             raw.DBUsername,
		sentryDSN:              raw.SentryDSN,
		gcpProject:             raw.GCPProject,
		achievementsFile:       raw.AchievementsFile,
		notificationWebhookURL: raw.NotificationWebhookURL,
		env:                    environment,
	}, nil
}
