package mqtt

import "fmt"

// Topic prefixes for the Cerberus topic hierarchy.
//
// All topics use the scheme: cerberus/{category}/...
const (
	// TopicPrefix is the base for all Cerberus topics.
	TopicPrefix = "cerberus"

	// TopicPrefixNotify is the base for notification delivery topics.
	TopicPrefixNotify = "cerberus/notify"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "cerberus/system"
)

// Topics provides builders for Cerberus MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	alarmTopic := topics.Notification("alarm")
//	// Returns: "cerberus/notify/alarm"
type Topics struct{}

// Notification returns the delivery topic for a notification kind,
// typically "status" or "alarm".
//
// Example: cerberus/notify/alarm
func (Topics) Notification(kind string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixNotify, kind)
}

// DeviceStatus returns the per-device status topic.
//
// Example: cerberus/notify/device/front-panel
func (Topics) DeviceStatus(deviceName string) string {
	return fmt.Sprintf("%s/device/%s", TopicPrefixNotify, deviceName)
}

// SystemStatus returns the retained presence topic carrying
// online/offline state and the Last Will.
//
// Example: cerberus/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllNotifications returns a pattern matching every notification topic.
// Useful for external subscribers, not used by Cerberus itself.
//
// Pattern: cerberus/notify/#
func (Topics) AllNotifications() string {
	return fmt.Sprintf("%s/#", TopicPrefixNotify)
}
