package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/calhoun-labs/cerberus/internal/infrastructure/config"
	"github.com/calhoun-labs/cerberus/internal/infrastructure/mqtt"
)

// webhookTimeout bounds one webhook delivery attempt.
const webhookTimeout = 10 * time.Second

// Target delivers one notification message to an external system.
type Target interface {
	// Send delivers the message. Blocking is fine; the manager calls
	// targets from its worker goroutine only.
	Send(ctx context.Context, message string) error

	// Name identifies the target in logs without exposing credentials.
	Name() string
}

// NewTarget builds a delivery target from its configuration.
//
// Parameters:
//   - cfg: Validated target configuration
//   - mqttClient: Broker client for mqtt targets (may be nil otherwise)
//
// Returns:
//   - Target: Ready to deliver
//   - error: ErrUnknownTargetType or ErrNoMQTTClient
func NewTarget(cfg config.TargetConfig, mqttClient *mqtt.Client) (Target, error) {
	switch cfg.Type {
	case config.TargetWebhook:
		return newWebhookTarget(cfg.URL, cfg.Username), nil
	case config.TargetMQTT:
		if mqttClient == nil {
			return nil, ErrNoMQTTClient
		}
		return &mqttTarget{client: mqttClient, topic: cfg.Topic}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTargetType, cfg.Type)
	}
}

// webhookTarget posts notifications to a Discord-compatible webhook as
// an HTML form: a content field plus an optional username override.
type webhookTarget struct {
	url      string
	username string
	client   *http.Client
}

func newWebhookTarget(endpoint, username string) *webhookTarget {
	return &webhookTarget{
		url:      endpoint,
		username: username,
		client:   &http.Client{Timeout: webhookTimeout},
	}
}

func (t *webhookTarget) Send(ctx context.Context, message string) error {
	form := url.Values{"content": {message}}
	if t.username != "" {
		form.Set("username", t.username)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s", ErrWebhookStatus, resp.Status)
	}
	return nil
}

// Name reports the webhook host only. The URL path carries the webhook
// secret and must never reach the logs.
func (t *webhookTarget) Name() string {
	u, err := url.Parse(t.url)
	if err != nil || u.Host == "" {
		return "webhook"
	}
	return "webhook " + u.Host
}

// mqttTarget publishes notifications to a broker topic.
type mqttTarget struct {
	client *mqtt.Client
	topic  string
}

func (t *mqttTarget) Send(_ context.Context, message string) error {
	return t.client.PublishDefault(t.topic, []byte(message))
}

func (t *mqttTarget) Name() string {
	return "mqtt " + t.topic
}
