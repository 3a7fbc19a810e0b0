package mqtt

import "fmt"

// Topic prefixes for the SmartIR MQTT namespace.
//
// All topics use the flat scheme: smartir/{category}/{id}
const (
	// TopicPrefix is the base for all SmartIR topics.
	TopicPrefix = "smartir"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "smartir/system"
)

// Topics provides builders for SmartIR MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// SendCommand returns the shared command topic most single-blaster
// installs use. This matches the default device.topic configuration.
//
// Example: smartir/send_command
func (Topics) SendCommand() string {
	return fmt.Sprintf("%s/send_command", TopicPrefix)
}

// DeviceCommand returns the per-device command topic for installs with
// more than one blaster.
//
// Example: smartir/device/bedroom-blaster/send
func (Topics) DeviceCommand(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/send", TopicPrefix, deviceID)
}

// SystemStatus returns the system status topic used for LWT and
// online/offline announcements.
//
// Example: smartir/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceCommands returns a pattern matching all per-device command topics.
//
// Pattern: smartir/device/+/send
func (Topics) AllDeviceCommands() string {
	return fmt.Sprintf("%s/device/+/send", TopicPrefix)
}
