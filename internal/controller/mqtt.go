package controller

import (
	"encoding/json"
	"fmt"
)

// ufor11CommandKey is the JSON field UFO-R11 firmware reads the code
// from (Zigbee2MQTT exposes it verbatim).
const ufor11CommandKey = "ir_code_to_send"

// mqttController publishes the command payload verbatim to the
// configured topic.
type mqttController struct {
	spec Spec
	pub  Publisher
}

// Kind implements Controller.
func (c *mqttController) Kind() Kind {
	return c.spec.Kind
}

// Supports implements Controller.
func (c *mqttController) Supports(encoding Encoding) bool {
	for _, enc := range supportedEncodings[c.spec.Kind] {
		if enc == encoding {
			return true
		}
	}
	return false
}

// Send implements Controller. The payload is the message body, untouched.
func (c *mqttController) Send(payload string) error {
	if err := c.pub.Publish(c.spec.Topic, []byte(payload), c.spec.QoS, false); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}

// ufor11Controller specialises the generic MQTT controller for
// UFO-R11 blasters: the payload is wrapped in a one-key JSON envelope
// before publishing. Delivery mechanics (topic, QoS, blocking publish)
// are identical to the generic controller.
type ufor11Controller struct {
	mqttController
}

// Send implements Controller with the UFO-R11 envelope shape.
func (c *ufor11Controller) Send(payload string) error {
	envelope, err := json.Marshal(map[string]string{ufor11CommandKey: payload})
	if err != nil {
		return fmt.Errorf("%w: encoding envelope: %w", ErrTransport, err)
	}
	if err := c.pub.Publish(c.spec.Topic, envelope, c.spec.QoS, false); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}
