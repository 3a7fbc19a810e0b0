// Package controller resolves and dispatches IR command controllers.
//
// A controller translates an encoded IR command string into exactly one
// MQTT publish on a device's configured topic. The registry maps a
// declared controller kind to a concrete variant:
//
//   - MQTT: publishes the code string verbatim.
//   - UFOR11: wraps the code in a {"ir_code_to_send": ...} JSON
//     envelope (payload shaping only; delivery is identical).
//
// Earlier generations of this registry silently constructed the
// UFO-R11 variant regardless of the requested kind. That shortcut is
// gone: the mapping here is total and explicit, and configurations
// that relied on kind "MQTT" producing enveloped payloads must now
// declare "UFOR11".
//
// Encoding compatibility is validated at resolve time, before any
// network resource is allocated; a device with an unsupported encoding
// is rejected without a connection ever being opened.
//
// # Usage
//
//	spec := controller.Spec{
//	    Kind:     controller.KindUFOR11,
//	    Encoding: controller.EncodingRaw,
//	    Topic:    "smartir/send_command",
//	    QoS:      1,
//	}
//	ctrl, err := controller.Resolve(spec, mqttClient)
//	if err != nil {
//	    return err
//	}
//	err = ctrl.Send(code)
package controller
