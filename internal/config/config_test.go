package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigFromEnvironment(t *testing.T) {
	t.Parallel()

	production := func() map[string]string {
		return map[string]string{
			"PUTTLOG_ENVIRONMENT":  "production",
			"CLOUDSQL_UNIX_SOCKET": "/cloudsql/project:region:instance",
			"DB_USERNAME":          "puttlog",
			"DB_PASSWORD":          "hunter2",
			"SENTRY_DSN":           "https://key@sentry.example.com/1",
		}
	}

	t.Run("development with defaults", func(t *testing.T) {
		t.Parallel()

		conf, err := configFromEnvironment(map[string]string{
			"PUTTLOG_ENVIRONMENT": "development",
		})
		require.NoError(t, err)
		require.True(t, conf.IsDevelopment())
		require.False(t, conf.IsProduction())
		require.False(t, conf.IsStaging())
		require.Equal(t, "8080", conf.Port())
		require.Empty(t, conf.SentryDSN())
		require.Empty(t, conf.AchievementsFile())
		require.Empty(t, conf.NotificationWebhookURL())
	})

	t.Run("production", func(t *testing.T) {
		t.Parallel()

		environ := production()
		environ["PORT"] = "9000"
		environ["GOOGLE_CLOUD_PROJECT"] = "puttlog-prod"
		environ["ACHIEVEMENTS_FILE"] = "/etc/puttlog/achievements.json"
		environ["NOTIFICATION_WEBHOOK_URL"] = "https://notify.example.com/unlocks"

		conf, err := configFromEnvironment(environ)
		require.NoError(t, err)
		require.True(t, conf.IsProduction())
		require.Equal(t, "9000", conf.Port())
		require.Equal(t, "/cloudsql/project:region:instance", conf.CloudSQLUnixSocketPath())
		require.Equal(t, "puttlog", conf.DBUsername())
		require.Equal(t, "hunter2", conf.DBPassword())
		require.Equal(t, "https://key@sentry.example.com/1", conf.SentryDSN())
		require.Equal(t, "puttlog-prod", conf.GCPProject())
		require.Equal(t, "/etc/puttlog/achievements.json", conf.AchievementsFile())
		require.Equal(t, "https://notify.example.com/unlocks", conf.NotificationWebhookURL())

		require.NotContains(t, conf.NonSensitiveString(), "hunter2")
		require.NotContains(t, conf.NonSensitiveString(), "sentry.example.com")
	})

	t.Run("missing environment", func(t *testing.T) {
		t.Parallel()

		_, err := configFromEnvironment(map[string]string{})
		require.ErrorIs(t, err, ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "PUTTLOG_ENVIRONMENT")
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Parallel()

		_, err := configFromEnvironment(map[string]string{
			"PUTTLOG_ENVIRONMENT": "prod",
		})
		require.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("missing required values outside development", func(t *testing.T) {
		t.Parallel()

		for _, key := range []string{"CLOUDSQL_UNIX_SOCKET", "DB_USERNAME", "DB_PASSWORD", "SENTRY_DSN"} {
			for _, env := range []string{"production", "staging"} {
				t.Run(env+" "+key, func(t *testing.T) {
					t.Parallel()

					environ := production()
					environ["PUTTLOG_ENVIRONMENT"] = env
					delete(environ, key)

					_, err := configFromEnvironment(environ)
					require.ErrorIs(t, err, ErrMissingRequiredValue)
					require.Contains(t, err.Error(), key)
				})
			}
		}
	})
}
