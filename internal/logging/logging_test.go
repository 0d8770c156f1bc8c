package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-makdo/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    logging.Level
		wantErr error
	}{
		{"debug", logging.LevelDebug, nil},
		{"INFO", logging.LevelInfo, nil},
		{"", logging.LevelWarn, nil},
		{"warning", logging.LevelWarn, nil},
		{"error", logging.LevelError, nil},
		{"loud", logging.LevelWarn, logging.ErrUnknownLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := logging.ParseLevel(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseLevel(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	if f, err := logging.ParseFormat("json"); err != nil || f != logging.FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if _, err := logging.ParseFormat("xml"); !errors.Is(err, logging.ErrUnknownFormat) {
		t.Errorf("ParseFormat(xml) error = %v, want ErrUnknownFormat", err)
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(logging.LevelInfo, logging.FormatJSON, &buf)
	logger.Debug("hidden")
	logger.Info("converted", "file", "a.md")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec["msg"] != "converted" || rec["file"] != "a.md" {
		t.Errorf("unexpected record: %v", rec)
	}
	if ts, _ := rec["time"].(string); !strings.Contains(ts, "T") {
		t.Errorf("time = %q, want RFC3339", ts)
	}
}

func TestNew_TextLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(logging.LevelWarn, logging.FormatText, &buf)
	logger.Info("skipped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "skipped") || !strings.Contains(out, "kept") {
		t.Errorf("unexpected output %q", out)
	}
}
