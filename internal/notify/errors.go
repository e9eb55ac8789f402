package notify

import "errors"

// Domain-specific errors for notification delivery.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownTargetType is returned when a target config names a type
	// other than "webhook" or "mqtt".
	ErrUnknownTargetType = errors.New("notify: unknown target type")

	// ErrNoMQTTClient is returned when an mqtt target is configured but
	// no broker client is available.
	ErrNoMQTTClient = errors.New("notify: mqtt target requires a connected broker client")

	// ErrWebhookStatus is returned when the webhook endpoint answers with
	// a non-2xx status.
	ErrWebhookStatus = errors.New("notify: webhook rejected notification")
)
