package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/smartir-dispatch/internal/codes"
)

// fakeSender records sent payloads and fails on selected calls.
type fakeSender struct {
	sent    []string
	failOn  map[int]error // 1-based call index → error
	callNum int
}

func (s *fakeSender) Send(payload string) error {
	s.callNum++
	s.sent = append(s.sent, payload)
	if err, ok := s.failOn[s.callNum]; ok {
		return err
	}
	return nil
}

// fakeConn builds a ConnectFunc around a sender and counts teardowns.
type fakeConn struct {
	sender     *fakeSender
	connectErr error
	closes     int
}

func (c *fakeConn) connect() (Sender, CloseFunc, error) {
	if c.connectErr != nil {
		return nil, nil, c.connectErr
	}
	return c.sender, func() error {
		c.closes++
		return nil
	}, nil
}

func testCommands() []codes.Command {
	return []codes.Command{
		{Path: "a.b", Payload: "X1"},
		{Path: "a.c", Payload: "X2"},
	}
}

func newTestRunner(t *testing.T, conn *fakeConn, prompter Prompter, cmds []codes.Command) *Runner {
	t.Helper()

	r, err := New(Options{
		Connect:  conn.connect,
		Prompter: prompter,
		Commands: cmds,
		Device:   "toshiba",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestNew_Validation(t *testing.T) {
	conn := &fakeConn{sender: &fakeSender{}}
	prompter := &ScriptPrompter{}

	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{
			name:    "missing connect",
			opts:    Options{Prompter: prompter, Commands: testCommands()},
			wantErr: ErrNoConnect,
		},
		{
			name:    "missing prompter",
			opts:    Options{Connect: conn.connect, Commands: testCommands()},
			wantErr: ErrNoPrompter,
		},
		{
			name:    "no commands",
			opts:    Options{Connect: conn.connect, Prompter: prompter},
			wantErr: ErrNoCommands,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_AllCommandsInOrder(t *testing.T) {
	conn := &fakeConn{sender: &fakeSender{}}
	prompter := &ScriptPrompter{}

	r := newTestRunner(t, conn, prompter, testCommands())

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := conn.sender.sent; len(got) != 2 || got[0] != "X1" || got[1] != "X2" {
		t.Errorf("sent = %v, want [X1 X2]", got)
	}
	// Prompt after every command except the last.
	if prompter.Calls() != 1 {
		t.Errorf("prompter calls = %d, want 1", prompter.Calls())
	}
	if report.Sent != 2 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("report = sent %d failed %d skipped %d, want 2/0/0", report.Sent, report.Failed, report.Skipped)
	}
	if r.State() != StateCompleted {
		t.Errorf("State() = %v, want StateCompleted", r.State())
	}
	if conn.closes != 1 {
		t.Errorf("closes = %d, want exactly 1", conn.closes)
	}
}

func TestRun_CommandFailureDoesNotAbort(t *testing.T) {
	sendErr := errors.New("broker rejected")
	conn := &fakeConn{sender: &fakeSender{failOn: map[int]error{1: sendErr}}}
	prompter := &ScriptPrompter{}

	r := newTestRunner(t, conn, prompter, testCommands())

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Failure on a.b still prompts and then attempts a.c.
	if len(conn.sender.sent) != 2 {
		t.Fatalf("sent %d commands, want 2", len(conn.sender.sent))
	}
	if prompter.Calls() != 1 {
		t.Errorf("prompter calls = %d, want 1", prompter.Calls())
	}
	if report.Sent != 1 || report.Failed != 1 {
		t.Errorf("report = sent %d failed %d, want 1/1", report.Sent, report.Failed)
	}
	if report.Outcomes[0].Err == nil || report.Outcomes[1].Err != nil {
		t.Errorf("outcomes = %v, want first failed, second ok", report.Outcomes)
	}
}

func TestRun_OperatorQuitStopsEarly(t *testing.T) {
	conn := &fakeConn{sender: &fakeSender{}}
	prompter := &ScriptPrompter{Answers: []bool{false}}

	cmds := []codes.Command{
		{Path: "one", Payload: "P1"},
		{Path: "two", Payload: "P2"},
		{Path: "three", Payload: "P3"},
	}
	r := newTestRunner(t, conn, prompter, cmds)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(conn.sender.sent) != 1 {
		t.Errorf("sent %d commands, want 1", len(conn.sender.sent))
	}
	if conn.closes != 1 {
		t.Errorf("closes = %d, want exactly 1", conn.closes)
	}
	// Graceful early stop, not an error.
	if r.State() != StateCompleted {
		t.Errorf("State() = %v, want StateCompleted", r.State())
	}
	if report.Skipped != 2 {
		t.Errorf("report.Skipped = %d, want 2", report.Skipped)
	}
}

func TestRun_PrompterErrorStopsGracefully(t *testing.T) {
	conn := &fakeConn{sender: &fakeSender{}}

	r, err := New(Options{
		Connect:  conn.connect,
		Prompter: &errPrompter{},
		Commands: testCommands(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(conn.sender.sent) != 1 {
		t.Errorf("sent %d commands, want 1", len(conn.sender.sent))
	}
	if report.State != StateCompleted {
		t.Errorf("report.State = %v, want StateCompleted", report.State)
	}
	if conn.closes != 1 {
		t.Errorf("closes = %d, want exactly 1", conn.closes)
	}
}

// errPrompter simulates closed operator input.
type errPrompter struct{}

func (errPrompter) Next(string) (bool, error) {
	return false, errors.New("input closed")
}

func TestRun_ConnectionFailure(t *testing.T) {
	connectErr := errors.New("mqtt: connection failed: timeout after 10s")
	sender := &fakeSender{}
	conn := &fakeConn{sender: sender, connectErr: connectErr}

	r := newTestRunner(t, conn, &ScriptPrompter{}, testCommands())

	report, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want connection failure")
	}
	if !errors.Is(err, connectErr) {
		t.Errorf("Run() error = %v, want wrapped %v", err, connectErr)
	}
	if report != nil {
		t.Errorf("Run() report = %v, want nil", report)
	}
	// Zero publish attempts, nothing to tear down.
	if len(sender.sent) != 0 {
		t.Errorf("sent %d commands, want 0", len(sender.sent))
	}
	if conn.closes != 0 {
		t.Errorf("closes = %d, want 0", conn.closes)
	}
	if r.State() != StateAborted {
		t.Errorf("State() = %v, want StateAborted", r.State())
	}
}

func TestRun_ContextCancelledBeforeFirstCommand(t *testing.T) {
	conn := &fakeConn{sender: &fakeSender{}}
	r := newTestRunner(t, conn, &ScriptPrompter{}, testCommands())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(conn.sender.sent) != 0 {
		t.Errorf("sent %d commands, want 0", len(conn.sender.sent))
	}
	if conn.closes != 1 {
		t.Errorf("closes = %d, want exactly 1", conn.closes)
	}
	if report.Skipped != 2 {
		t.Errorf("report.Skipped = %d, want 2", report.Skipped)
	}
}

// recordingRecorder captures recorder calls.
type recordingRecorder struct {
	started  int
	commands []string
	finished []string
	err      error
}

func (r *recordingRecorder) StartRun(_ context.Context, _, _ string, _ int) error {
	r.started++
	return r.err
}

func (r *recordingRecorder) RecordCommand(_ context.Context, _ string, _ int, path string, _ error) error {
	r.commands = append(r.commands, path)
	return r.err
}

func (r *recordingRecorder) FinishRun(_ context.Context, _ string, state string, _, _ int) error {
	r.finished = append(r.finished, state)
	return r.err
}

func TestRun_RecordsOutcomes(t *testing.T) {
	conn := &fakeConn{sender: &fakeSender{}}
	rec := &recordingRecorder{}

	r, err := New(Options{
		Connect:  conn.connect,
		Prompter: &ScriptPrompter{},
		Commands: testCommands(),
		Recorder: rec,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if rec.started != 1 {
		t.Errorf("StartRun calls = %d, want 1", rec.started)
	}
	if len(rec.commands) != 2 || rec.commands[0] != "a.b" || rec.commands[1] != "a.c" {
		t.Errorf("recorded commands = %v, want [a.b a.c]", rec.commands)
	}
	if len(rec.finished) != 1 || rec.finished[0] != "completed" {
		t.Errorf("FinishRun states = %v, want [completed]", rec.finished)
	}
}

func TestRun_RecorderFailureIsNotFatal(t *testing.T) {
	conn := &fakeConn{sender: &fakeSender{}}
	rec := &recordingRecorder{err: errors.New("disk full")}

	r, err := New(Options{
		Connect:  conn.connect,
		Prompter: &ScriptPrompter{},
		Commands: testCommands(),
		Recorder: rec,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Sent != 2 {
		t.Errorf("report.Sent = %d, want 2", report.Sent)
	}
}

func TestScriptPrompter_ExhaustedContinues(t *testing.T) {
	p := &ScriptPrompter{Answers: []bool{true}}

	for i := 0; i < 3; i++ {
		cont, err := p.Next("x")
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !cont {
			t.Errorf("Next() call %d = false, want true", i+1)
		}
	}
	if p.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", p.Calls())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateRunning, "running"},
		{StateCompleted, "completed"},
		{StateAborted, "aborted"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
