// Package mqtt provides MQTT client connectivity for the SmartIR
// dispatch tools.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The dispatch pipeline is publish-only. Controllers turn encoded IR
// commands into publishes on a configured topic; the IR blaster (or a
// Zigbee2MQTT bridge in front of it) is the subscriber.
//
//	Batch runner → Controller → MQTT Broker → IR blaster
//
// # Connection lifecycle
//
// Connect performs a bounded wait for the broker acknowledgement
// (10 seconds) instead of polling a connected flag; a timeout is
// reported as ErrConnectionFailed. Close publishes a graceful offline
// status, quiesces pending operations, and stops the background
// network loop. Callers own exactly one Close per Connect, usually via
// defer.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishString(mqtt.Topics{}.SendCommand(), code, 1, false)
package mqtt
