package controller

import (
	"fmt"
	"time"
)

// Kind identifies a controller family.
type Kind string

// Known controller kinds.
const (
	// KindMQTT is the generic MQTT controller: the raw code string is
	// published verbatim to the configured topic.
	KindMQTT Kind = "MQTT"

	// KindUFOR11 targets Moes UFO-R11 blasters behind Zigbee2MQTT,
	// which expect the code wrapped in a one-key JSON envelope.
	KindUFOR11 Kind = "UFOR11"
)

// Encoding is the textual representation scheme of a command payload.
type Encoding string

// Known command encodings.
const (
	EncodingBase64 Encoding = "Base64"
	EncodingHex    Encoding = "Hex"
	EncodingPronto Encoding = "Pronto"
	EncodingRaw    Encoding = "Raw"
)

// supportedEncodings is the closed set of encodings each controller
// kind accepts. Both MQTT variants carry opaque code strings, so only
// Raw is legal; decoding happens on the device side.
var supportedEncodings = map[Kind][]Encoding{
	KindMQTT:   {EncodingRaw},
	KindUFOR11: {EncodingRaw},
}

// ParseKind converts a configuration string to a Kind.
//
// Returns:
//   - Kind: The parsed kind
//   - error: ErrUnsupportedController if the string is not a known kind
func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if _, ok := supportedEncodings[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedController, s)
	}
	return kind, nil
}

// ParseEncoding converts a configuration string to an Encoding.
//
// Returns:
//   - Encoding: The parsed encoding
//   - error: ErrUnsupportedEncoding if the string is not a known encoding
func ParseEncoding(s string) (Encoding, error) {
	switch enc := Encoding(s); enc {
	case EncodingBase64, EncodingHex, EncodingPronto, EncodingRaw:
		return enc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, s)
	}
}

// SupportedEncodings returns the closed encoding set for a kind.
// The returned slice is a copy; callers may not mutate the registry.
func SupportedEncodings(kind Kind) []Encoding {
	encs, ok := supportedEncodings[kind]
	if !ok {
		return nil
	}
	out := make([]Encoding, len(encs))
	copy(out, encs)
	return out
}

// Spec identifies the controller variant for one device and how it
// publishes. Immutable once constructed.
type Spec struct {
	// Kind selects the controller variant.
	Kind Kind

	// Encoding is the representation of the device's command payloads.
	// Must be in the kind's supported set.
	Encoding Encoding

	// Topic is the transport target commands are published to.
	Topic string

	// QoS is the MQTT quality-of-service level for command publishes.
	QoS byte

	// SendDelay is an advisory pause between consecutive commands.
	// Send itself never sleeps; batch drivers apply this between calls.
	SendDelay time.Duration
}

// Validate checks the spec without allocating any network resource.
//
// It fails with ErrUnsupportedController for an unknown kind and with
// ErrUnsupportedEncoding when the requested encoding is outside the
// kind's closed set. Callers that open connections should validate
// first so a bad spec never costs a connection.
func (s Spec) Validate() error {
	encs, ok := supportedEncodings[s.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedController, s.Kind)
	}

	supported := false
	for _, enc := range encs {
		if enc == s.Encoding {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: %q not accepted by the %s controller", ErrUnsupportedEncoding, s.Encoding, s.Kind)
	}

	if s.Topic == "" {
		return ErrInvalidTopic
	}

	return nil
}

// Publisher is the transport capability controllers publish through.
// *mqtt.Client satisfies it; tests substitute a recorder.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Controller translates an encoded command into a transport publish.
//
// Send performs exactly one publish per call with no internal retry.
// A Controller instance assumes at most one outstanding Send at a
// time; concurrent sends need the underlying Publisher's guarantees.
type Controller interface {
	// Send publishes one command payload. A transport failure is
	// returned wrapped in ErrTransport, never swallowed.
	Send(payload string) error

	// Supports reports whether the controller accepts an encoding.
	Supports(encoding Encoding) bool

	// Kind returns the controller's kind.
	Kind() Kind
}

// Resolve returns the concrete controller for a spec.
//
// The kind mapping is explicit and total: every known kind resolves to
// its own variant, and an unknown kind fails with
// ErrUnsupportedController. Validation runs before the publisher is
// touched, so an unsupported encoding performs no network action.
//
// Parameters:
//   - spec: Controller spec (kind, encoding, topic, QoS, delay)
//   - pub: Transport to publish through
//
// Returns:
//   - Controller: Resolved controller variant
//   - error: Validation failure, or ErrNoPublisher when pub is nil
func Resolve(spec Spec, pub Publisher) (Controller, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, ErrNoPublisher
	}

	switch spec.Kind {
	case KindMQTT:
		return &mqttController{spec: spec, pub: pub}, nil
	case KindUFOR11:
		return &ufor11Controller{mqttController{spec: spec, pub: pub}}, nil
	default:
		// Unreachable: Validate rejects unknown kinds.
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedController, spec.Kind)
	}
}
