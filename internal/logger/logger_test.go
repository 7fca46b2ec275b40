package logger

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	_ = capture(t, false)
	if IsVerbose() {
		t.Fatal("expected verbose to be off")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Fatal("expected verbose to be on")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("stage %s", "summarize") }, "[DEBUG] stage summarize\n"},
		{"info", func() { Info("stored %d chunks", 3) }, "[INFO] stored 3 chunks\n"},
		{"warn", func() { Warn("span failed") }, "[WARN] span failed\n"},
		{"section", func() { Section("Pipeline") }, "\n=== Pipeline ===\n"},
		{"error", func() { Error("boom: %v", "timeout") }, "[ERROR] boom: timeout\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevels_WhenQuiet(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestError_AlwaysPrints(t *testing.T) {
	buf := capture(t, false)

	Error("store unavailable")

	if got := buf.String(); got != "[ERROR] store unavailable\n" {
		t.Errorf("unexpected error output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	_ = capture(t, false)
	SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Debug("worker %d", i)
			Error("worker %d", i)
			_ = IsVerbose()
		}()
	}
	wg.Wait()
}
