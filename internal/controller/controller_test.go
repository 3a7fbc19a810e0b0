package controller

import (
	"encoding/json"
	"errors"
	"testing"
)

// recordingPublisher captures publishes for assertions.
type recordingPublisher struct {
	topics   []string
	payloads [][]byte
	qos      []byte
	retained []bool
	err      error
}

func (p *recordingPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	p.qos = append(p.qos, qos)
	p.retained = append(p.retained, retained)
	return p.err
}

func testSpec(kind Kind) Spec {
	return Spec{
		Kind:     kind,
		Encoding: EncodingRaw,
		Topic:    "smartir/send_command",
		QoS:      1,
	}
}

func TestResolve_KnownKinds(t *testing.T) {
	for _, kind := range []Kind{KindMQTT, KindUFOR11} {
		t.Run(string(kind), func(t *testing.T) {
			ctrl, err := Resolve(testSpec(kind), &recordingPublisher{})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got := ctrl.Kind(); got != kind {
				t.Errorf("Kind() = %q, want %q", got, kind)
			}
		})
	}
}

func TestResolve_DistinctVariantsPerKind(t *testing.T) {
	// The kinds must not collapse onto one behaviour: same payload,
	// different publish shapes.
	pubMQTT := &recordingPublisher{}
	pubUFO := &recordingPublisher{}

	generic, err := Resolve(testSpec(KindMQTT), pubMQTT)
	if err != nil {
		t.Fatalf("Resolve(MQTT) error = %v", err)
	}
	vendor, err := Resolve(testSpec(KindUFOR11), pubUFO)
	if err != nil {
		t.Fatalf("Resolve(UFOR11) error = %v", err)
	}

	if err := generic.Send("AABB"); err != nil {
		t.Fatalf("generic Send() error = %v", err)
	}
	if err := vendor.Send("AABB"); err != nil {
		t.Fatalf("vendor Send() error = %v", err)
	}

	if got := string(pubMQTT.payloads[0]); got != "AABB" {
		t.Errorf("generic payload = %q, want %q", got, "AABB")
	}
	if got := string(pubUFO.payloads[0]); got == "AABB" {
		t.Error("vendor payload identical to generic payload, want envelope")
	}
}

func TestResolve_UnknownKind(t *testing.T) {
	pub := &recordingPublisher{}

	_, err := Resolve(Spec{
		Kind:     Kind("LOOKIN"),
		Encoding: EncodingRaw,
		Topic:    "smartir/send_command",
	}, pub)

	if !errors.Is(err, ErrUnsupportedController) {
		t.Errorf("Resolve() error = %v, want ErrUnsupportedController", err)
	}
	if len(pub.topics) != 0 {
		t.Errorf("Resolve() published %d messages, want 0", len(pub.topics))
	}
}

func TestResolve_UnsupportedEncoding(t *testing.T) {
	for _, kind := range []Kind{KindMQTT, KindUFOR11} {
		for _, enc := range []Encoding{EncodingBase64, EncodingHex, EncodingPronto} {
			t.Run(string(kind)+"/"+string(enc), func(t *testing.T) {
				pub := &recordingPublisher{}
				spec := testSpec(kind)
				spec.Encoding = enc

				_, err := Resolve(spec, pub)
				if !errors.Is(err, ErrUnsupportedEncoding) {
					t.Errorf("Resolve() error = %v, want ErrUnsupportedEncoding", err)
				}
				if len(pub.topics) != 0 {
					t.Errorf("Resolve() published %d messages, want 0", len(pub.topics))
				}
			})
		}
	}
}

func TestResolve_MissingTopic(t *testing.T) {
	spec := testSpec(KindMQTT)
	spec.Topic = ""

	if _, err := Resolve(spec, &recordingPublisher{}); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Resolve() error = %v, want ErrInvalidTopic", err)
	}
}

func TestResolve_NilPublisher(t *testing.T) {
	if _, err := Resolve(testSpec(KindMQTT), nil); !errors.Is(err, ErrNoPublisher) {
		t.Errorf("Resolve() error = %v, want ErrNoPublisher", err)
	}
}

func TestSupports(t *testing.T) {
	ctrl, err := Resolve(testSpec(KindUFOR11), &recordingPublisher{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !ctrl.Supports(EncodingRaw) {
		t.Error("Supports(Raw) = false, want true")
	}
	for _, enc := range []Encoding{EncodingBase64, EncodingHex, EncodingPronto} {
		if ctrl.Supports(enc) {
			t.Errorf("Supports(%s) = true, want false", enc)
		}
	}
}

func TestSupportedEncodings(t *testing.T) {
	for _, kind := range []Kind{KindMQTT, KindUFOR11} {
		encs := SupportedEncodings(kind)
		if len(encs) != 1 || encs[0] != EncodingRaw {
			t.Errorf("SupportedEncodings(%s) = %v, want [Raw]", kind, encs)
		}
	}

	if encs := SupportedEncodings(Kind("LOOKIN")); encs != nil {
		t.Errorf("SupportedEncodings(unknown) = %v, want nil", encs)
	}
}

func TestMQTTController_Send(t *testing.T) {
	pub := &recordingPublisher{}
	spec := testSpec(KindMQTT)
	spec.QoS = 2

	ctrl, err := Resolve(spec, pub)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if err := ctrl.Send("0000 006D 0022"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(pub.topics) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.topics))
	}
	if pub.topics[0] != "smartir/send_command" {
		t.Errorf("topic = %q, want %q", pub.topics[0], "smartir/send_command")
	}
	if got := string(pub.payloads[0]); got != "0000 006D 0022" {
		t.Errorf("payload = %q, want verbatim command", got)
	}
	if pub.qos[0] != 2 {
		t.Errorf("qos = %d, want 2", pub.qos[0])
	}
	if pub.retained[0] {
		t.Error("retained = true, want false for commands")
	}
}

func TestUFOR11Controller_SendEnvelope(t *testing.T) {
	pub := &recordingPublisher{}

	ctrl, err := Resolve(testSpec(KindUFOR11), pub)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if err := ctrl.Send("AABB"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(pub.payloads) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.payloads))
	}

	var envelope map[string]string
	if err := json.Unmarshal(pub.payloads[0], &envelope); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(envelope) != 1 {
		t.Errorf("envelope has %d keys, want 1", len(envelope))
	}
	if envelope["ir_code_to_send"] != "AABB" {
		t.Errorf("envelope[ir_code_to_send] = %q, want %q", envelope["ir_code_to_send"], "AABB")
	}
}

func TestSend_TransportFailure(t *testing.T) {
	sentinel := errors.New("broker rejected")

	for _, kind := range []Kind{KindMQTT, KindUFOR11} {
		t.Run(string(kind), func(t *testing.T) {
			pub := &recordingPublisher{err: sentinel}

			ctrl, err := Resolve(testSpec(kind), pub)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			err = ctrl.Send("AABB")
			if !errors.Is(err, ErrTransport) {
				t.Errorf("Send() error = %v, want ErrTransport", err)
			}
			if !errors.Is(err, sentinel) {
				t.Errorf("Send() error = %v, want wrapped %v", err, sentinel)
			}
			// Exactly one publish attempt, no retry.
			if len(pub.topics) != 1 {
				t.Errorf("publish attempts = %d, want 1", len(pub.topics))
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"MQTT", KindMQTT, false},
		{"UFOR11", KindUFOR11, false},
		{"mqtt", "", true},
		{"LOOKIN", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedController) {
				t.Errorf("ParseKind(%q) error = %v, want ErrUnsupportedController", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseEncoding(t *testing.T) {
	for _, valid := range []string{"Base64", "Hex", "Pronto", "Raw"} {
		if _, err := ParseEncoding(valid); err != nil {
			t.Errorf("ParseEncoding(%q) error = %v", valid, err)
		}
	}

	if _, err := ParseEncoding("raw"); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Errorf("ParseEncoding(raw) error = %v, want ErrUnsupportedEncoding", err)
	}
}
