// Package mqtt wraps paho.mqtt.golang for Cerberus's outbound
// notification traffic.
//
// Cerberus is publish-only on the broker: notification targets push
// status and alarm messages out, and the client maintains a retained
// presence topic with a Last Will so subscribers can tell a graceful
// shutdown from a crash. There is no inbound control surface.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil { ... }
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Notification("alarm")
//	err = client.PublishDefault(topic, []byte(message))
//
// The client reconnects automatically with exponential backoff;
// publishes while disconnected fail fast with ErrNotConnected so
// callers can decide whether to retry or drop.
//
// Thread Safety: all methods are safe for concurrent use from multiple
// goroutines.
package mqtt
