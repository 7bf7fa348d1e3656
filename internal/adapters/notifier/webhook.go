package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/puttlog/puttlog/internal/config"
	"github.com/puttlog/puttlog/internal/constants"
	"github.com/puttlog/puttlog/internal/domain"
	"github.com/puttlog/puttlog/internal/logging"
	"github.com/puttlog/puttlog/internal/reporting"
	"golang.org/x/time/rate"
)

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type webhookAchievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type webhookPayload struct {
	PlayerID     string               `json:"playerId"`
	Achievements []webhookAchievement `json:"achievements"`
	UnlockedAt   time.Time            `json:"unlockedAt"`
}

type webhookNotifier struct {
	httpClient HttpClient
	url        string
	limiter    *rate.Limiter
}

// NewWebhookNotifier returns a notifier that POSTs unlock events as JSON to url,
// sending at most refillPerSecond requests per second on average
func NewWebhookNotifier(httpClient HttpClient, url string, refillPerSecond float64, burstSize int) Notifier {
	return &webhookNotifier{
		httpClient: httpClient,
		url:        url,
		limiter:    rate.NewLimiter(rate.Limit(refillPerSecond), burstSize),
	}
}

func (n *webhookNotifier) NotifyUnlocked(ctx context.Context, playerID string, unlocked []domain.AchievementDefinition, unlockedAt time.Time) error {
	if len(unlocked) == 0 {
		return nil
	}

	logger := logging.FromContext(ctx)

	payload := webhookPayload{
		PlayerID:     playerID,
		Achievements: make([]webhookAchievement, 0, len(unlocked)),
		UnlockedAt:   unlockedAt.UTC(),
	}
	for _, definition := range unlocked {
		payload.Achievements = append(payload.Achievements, webhookAchievement{
			ID:          definition.ID,
			Name:        definition.Name,
			Description: definition.Description,
			Icon:        definition.Icon,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		err := fmt.Errorf("failed to marshal webhook payload: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	err = n.limiter.Wait(ctx)
	if err != nil {
		err := fmt.Errorf("failed waiting for webhook rate limit: %w", err)
		logger.WarnContext(ctx, "Dropping unlock notification", "error", err)
		reporting.Report(ctx, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constants.USER_AGENT)

	start := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		err := fmt.Errorf("failed to send request: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	defer resp.Body.Close()

	// Drain the body so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.InfoContext(ctx, "webhook request completed", "status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("webhook responded with status %d", resp.StatusCode)
		reporting.Report(ctx, err, map[string]string{
			"statusCode": fmt.Sprintf("%d", resp.StatusCode),
		})
		return err
	}

	return nil
}

// NewNotifierFromConfig returns the webhook notifier if a webhook url is configured,
// and the log notifier otherwise
func NewNotifierFromConfig(conf config.Config, httpClient HttpClient) Notifier {
	if conf.NotificationWebhookURL() == "" {
		return NewLogNotifier()
	}
	return NewWebhookNotifier(httpClient, conf.NotificationWebhookURL(), 5, 50)
}
