package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

func TestWithURLAddsField(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture)
	log := WithURL(logger, "https://wikipedia.org")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["url"] != "https://wikipedia.org" {
		t.Fatalf("expected url field, got %+v", entry)
	}
}

func TestWithURLSkipsEmpty(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture)
	WithURL(logger, "").Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["url"]; ok {
		t.Fatalf("did not expect url field, got %+v", entry)
	}
}

func TestWithTabAddsField(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture)
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	WithTab(ctx, "tab1").Info("hello")

	entry := capture.firstEntry(t)
	if entry["tab"] != "tab1" {
		t.Fatalf("expected tab field, got %+v", entry)
	}
}

func TestWithTabDedupesMarkedContext(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture)
	tabbed := logger.With("tab", "tab1")
	ctx := ContextWithTabLogger(context.Background(), tabbed, "tab1")
	WithTab(ctx, "tab1").Info("hello")

	line := capture.buf.String()
	if n := bytes.Count([]byte(line), []byte(`"tab"`)); n != 1 {
		t.Fatalf("expected a single tab field, got %d in %s", n, line)
	}
}

func TestDetachDropsCancellation(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture)
	ctx, cancel := context.WithCancel(ContextWithTabLogger(context.Background(), logger, "tab1"))
	cancel()

	detached := Detach(ctx)
	select {
	case <-detached.Done():
		t.Fatalf("expected detached context to stay open")
	case <-time.After(10 * time.Millisecond):
	}
	if got, _ := detached.Value(tabKey).(schema.TabID); got != "tab1" {
		t.Fatalf("expected tab marker to survive detach, got %q", got)
	}
}

func newCaptureLogger(capture *logCapture) pslog.Logger {
	return pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
