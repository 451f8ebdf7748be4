package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  LogLevel
	}{
		{"error", ERROR},
		{"ERROR", ERROR},
		{" warn ", WARN},
		{"warning", WARN},
		{"info", INFO},
		{"debug", DEBUG},
		{"", INFO},
		{"bogus", INFO},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevelToString(t *testing.T) {
	t.Parallel()

	if got := LevelToString(WARN); got != "WARN" {
		t.Errorf("LevelToString(WARN) = %q", got)
	}
	if got := LevelToString(LogLevel(99)); got != "INFO" {
		t.Errorf("LevelToString(unknown) = %q, want INFO fallback", got)
	}
}

func TestLogger_FileOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, err := New(INFO, dir)
	if err != nil {
		t.Fatalf("creating logger: %v", err)
	}
	l.SetConsoleOutput(false)

	l.Info("historian ready", "driver", "sqlite")
	l.Debug("should be filtered")
	if err := l.Close(); err != nil {
		t.Fatalf("closing logger: %v", err)
	}

	name := "timescribe-" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "[INFO] historian ready driver=sqlite") {
		t.Errorf("log line missing from output: %q", out)
	}
	if strings.Contains(out, "should be filtered") {
		t.Errorf("debug line leaked past INFO level: %q", out)
	}
}

func TestLogger_SetLevel(t *testing.T) {
	t.Parallel()

	l, err := New(ERROR, "")
	if err != nil {
		t.Fatalf("creating logger: %v", err)
	}
	defer l.Close()

	if got := l.GetLevel(); got != ERROR {
		t.Errorf("GetLevel() = %v, want ERROR", got)
	}
	l.SetLevel(DEBUG)
	if got := l.GetLevel(); got != DEBUG {
		t.Errorf("GetLevel() after SetLevel = %v, want DEBUG", got)
	}
}

func TestFormatContext(t *testing.T) {
	t.Parallel()

	if got := formatContext(); got != "" {
		t.Errorf("formatContext() = %q, want empty", got)
	}
	if got := formatContext("rows", 5, "table", "data"); got != " rows=5 table=data" {
		t.Errorf("formatContext() = %q", got)
	}
	// A trailing key without a value still renders.
	if got := formatContext("orphan"); got != " orphan=<missing>" {
		t.Errorf("formatContext(orphan) = %q", got)
	}
}
