package responder

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/danmuck/tcpsum/internal/exchange"
	"github.com/danmuck/tcpsum/internal/testutil/testlog"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Name = "S"
	return cfg
}

func newTestResponder(t *testing.T) *Responder {
	t.Helper()
	r, err := New(testConfig())
	if err != nil {
		t.Fatalf("new responder: %v", err)
	}
	return r
}

// handleOverPipe runs one SERVE step while the client side writes payload
// (nil closes immediately) and collects whatever the responder sent back.
func handleOverPipe(t *testing.T, r *Responder, payload []byte) (Outcome, []byte) {
	t.Helper()
	client, server := net.Pipe()
	defer client.Close()

	done := make(chan Outcome, 1)
	go func() {
		done <- r.Handle(context.Background(), server)
	}()

	if payload == nil {
		_ = client.Close()
		return <-done, nil
	}
	if _, err := client.Write(payload); err != nil {
		t.Fatalf("client write: %v", err)
	}
	reply, err := io.ReadAll(client)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	return <-done, reply
}

func TestHandleRepliesWithinRange(t *testing.T) {
	testlog.Start(t)
	r := newTestResponder(t)

	out, reply := handleOverPipe(t, r, []byte(`{"name":"C","number":5}`))
	if out.Kind != OutcomeReplied {
		t.Fatalf("unexpected outcome: %v err=%v", out.Kind, out.Err)
	}
	if out.Terminal() {
		t.Fatalf("replied outcome must not be terminal")
	}
	if out.Sum != 104 {
		t.Fatalf("unexpected sum: %d", out.Sum)
	}
	resp, err := exchange.DecodeResponse(reply)
	if err != nil {
		t.Fatalf("decode reply %q: %v", reply, err)
	}
	if resp.Name != "S" || resp.Number != 99 {
		t.Fatalf("unexpected reply: %+v", resp)
	}
}

func TestHandleRangeBoundaries(t *testing.T) {
	testlog.Start(t)
	r := newTestResponder(t)

	for _, n := range []int{1, 100} {
		payload, _ := exchange.EncodeRequest(exchange.Request{Name: "C", Number: n})
		out, _ := handleOverPipe(t, r, payload)
		if out.Kind != OutcomeReplied || out.Sum != n+99 {
			t.Fatalf("n=%d: unexpected outcome %v sum=%d", n, out.Kind, out.Sum)
		}
	}
	for _, n := range []int{0, 101, -7, 150} {
		payload, _ := exchange.EncodeRequest(exchange.Request{Name: "C", Number: n})
		out, reply := handleOverPipe(t, r, payload)
		if out.Kind != OutcomeRangeViolation || !out.Terminal() {
			t.Fatalf("n=%d: expected terminal range violation, got %v", n, out.Kind)
		}
		if len(reply) != 0 {
			t.Fatalf("n=%d: expected no reply, got %q", n, reply)
		}
		if !errors.Is(out.Err, ErrRangeViolation) {
			t.Fatalf("n=%d: expected ErrRangeViolation, got %v", n, out.Err)
		}
	}
	for _, literal := range []string{"100000000000000000000", "-100000000000000000000"} {
		out, reply := handleOverPipe(t, r, []byte(`{"name":"C","number":`+literal+`}`))
		if out.Kind != OutcomeRangeViolation || !out.Terminal() {
			t.Fatalf("n=%s: expected terminal range violation, got %v err=%v", literal, out.Kind, out.Err)
		}
		if len(reply) != 0 {
			t.Fatalf("n=%s: expected no reply, got %q", literal, reply)
		}
		var rangeErr *RangeError
		if !errors.As(out.Err, &rangeErr) || rangeErr.Literal != literal {
			t.Fatalf("n=%s: unexpected range error: %v", literal, out.Err)
		}
		if out.Request.Name != "C" {
			t.Fatalf("n=%s: unexpected request name: %q", literal, out.Request.Name)
		}
	}
	out, _ := handleOverPipe(t, r, []byte(`{"name":"C","number":5.5}`))
	if out.Kind != OutcomeDecodeFailed {
		t.Fatalf("expected fractional number to fail decoding, got %v", out.Kind)
	}
}

func TestHandleEmptyPayload(t *testing.T) {
	testlog.Start(t)
	r := newTestResponder(t)

	out, _ := handleOverPipe(t, r, nil)
	if out.Kind != OutcomeEmpty {
		t.Fatalf("unexpected outcome: %v", out.Kind)
	}
	if !errors.Is(out.Err, exchange.ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", out.Err)
	}
	if out.Terminal() {
		t.Fatalf("empty payload must not stop the responder")
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	testlog.Start(t)
	r := newTestResponder(t)

	for _, raw := range []string{`hello`, `{"name":"C"}`, `{"name":"C","number":"5"}`} {
		out, reply := handleOverPipe(t, r, []byte(raw))
		if out.Kind != OutcomeDecodeFailed {
			t.Fatalf("payload %q: unexpected outcome %v", raw, out.Kind)
		}
		if !errors.Is(out.Err, exchange.ErrDecode) {
			t.Fatalf("payload %q: expected ErrDecode, got %v", raw, out.Err)
		}
		if len(reply) != 0 {
			t.Fatalf("payload %q: expected no reply, got %q", raw, reply)
		}
	}
}

func TestHandleReadTimeout(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig()
	cfg.ReadTimeout = 20 * time.Millisecond
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("new responder: %v", err)
	}

	client, server := net.Pipe()
	defer client.Close()
	out := r.Handle(context.Background(), server)
	if out.Kind != OutcomeTransportFailed {
		t.Fatalf("unexpected outcome: %v", out.Kind)
	}
	if !errors.Is(out.Err, exchange.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", out.Err)
	}
}

// exchangeTCP dials addr, sends payload and reads until the responder closes.
func exchangeTCP(t *testing.T, addr string, payload []byte) []byte {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func startResponder(t *testing.T, ctx context.Context) (*Responder, <-chan error) {
	t.Helper()
	r := newTestResponder(t)
	if err := r.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if r.State() != StateListening {
		t.Fatalf("unexpected state after listen: %v", r.State())
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Serve(ctx)
	}()
	t.Cleanup(func() {
		_ = r.Close()
	})
	return r, errCh
}

func waitServe(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not return")
		return nil
	}
}

func TestServeSequentialExchangesThenPoisonPill(t *testing.T) {
	testlog.Start(t)
	r, errCh := startResponder(t, context.Background())
	addr := r.Addr().String()

	for _, n := range []int{10, 20} {
		payload, _ := exchange.EncodeRequest(exchange.Request{Name: "C", Number: n})
		reply := exchangeTCP(t, addr, payload)
		resp, err := exchange.DecodeResponse(reply)
		if err != nil {
			t.Fatalf("n=%d: decode reply %q: %v", n, reply, err)
		}
		if got := Sum(n, resp.Number); got != n+99 {
			t.Fatalf("n=%d: unexpected sum %d", n, got)
		}
	}

	// Empty and malformed connections keep the loop alive.
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial empty: %v", err)
	}
	_ = conn.Close()
	if reply := exchangeTCP(t, addr, []byte(`{"number":`)); len(reply) != 0 {
		t.Fatalf("expected no reply to malformed payload, got %q", reply)
	}

	reply := exchangeTCP(t, addr, []byte(`{"name":"C","number":150}`))
	if len(reply) != 0 {
		t.Fatalf("expected no reply to out-of-range number, got %q", reply)
	}
	if err := waitServe(t, errCh); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if r.State() != StateShutdown {
		t.Fatalf("unexpected state after poison pill: %v", r.State())
	}
	if conn, err := net.DialTimeout("tcp", addr, time.Second); err == nil {
		_ = conn.Close()
		t.Fatalf("expected listener closed after shutdown")
	}
}

func TestServeStopsOnContextCancel(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	r, errCh := startResponder(t, ctx)
	addr := r.Addr().String()

	cancel()
	if err := waitServe(t, errCh); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if r.State() != StateShutdown {
		t.Fatalf("unexpected state after cancel: %v", r.State())
	}
	if conn, err := net.DialTimeout("tcp", addr, time.Second); err == nil {
		_ = conn.Close()
		t.Fatalf("expected listener closed after cancel")
	}
}

func TestServeCancelWhileConnectionIdle(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	r, errCh := startResponder(t, ctx)
	addr := r.Addr().String()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for r.State() != StateServe {
		if time.Now().After(deadline) {
			t.Fatalf("responder never entered serve, state=%v", r.State())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := waitServe(t, errCh); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if r.State() != StateShutdown {
		t.Fatalf("unexpected state after cancel: %v", r.State())
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	reply, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("expected responder to close the idle connection, got %v", err)
	}
	if len(reply) != 0 {
		t.Fatalf("expected no reply after cancel, got %q", reply)
	}
	if c, err := net.DialTimeout("tcp", addr, time.Second); err == nil {
		_ = c.Close()
		t.Fatalf("expected listener closed after cancel")
	}
}

func TestServeWithoutListen(t *testing.T) {
	testlog.Start(t)
	r := newTestResponder(t)
	if err := r.Serve(context.Background()); !errors.Is(err, ErrNotListening) {
		t.Fatalf("expected ErrNotListening, got %v", err)
	}
}

func TestListenTwiceFails(t *testing.T) {
	testlog.Start(t)
	r := newTestResponder(t)
	if err := r.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer r.Close()
	if err := r.Listen(); err == nil {
		t.Fatalf("expected second listen to fail")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cases := []struct {
		mutate func(*Config)
		want   error
	}{
		{func(c *Config) { c.Addr = " " }, ErrInvalidAddr},
		{func(c *Config) { c.Name = "" }, ErrInvalidName},
		{func(c *Config) { c.MinNumber = 10; c.MaxNumber = 1 }, ErrInvalidRange},
		{func(c *Config) { c.Backlog = 0 }, ErrInvalidBacklog},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("expected %v, got %v", tc.want, err)
		}
		if _, err := New(cfg); !errors.Is(err, tc.want) {
			t.Fatalf("New: expected %v, got %v", tc.want, err)
		}
	}
}

func TestStateStrings(t *testing.T) {
	if StateListening.String() != "listening" || StateServe.String() != "serve" || StateShutdown.String() != "shutdown" {
		t.Fatalf("unexpected state names")
	}
	if OutcomeRangeViolation.String() != "range_violation" {
		t.Fatalf("unexpected outcome name: %q", OutcomeRangeViolation.String())
	}
}
