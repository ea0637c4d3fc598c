package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chanserv.log")
	logger := New("info", FileOptions{Path: path})

	logger.Info().Str("channel", "go").Msg("channel created")
	logger.Debug().Msg("filtered out")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"channel":"go"`) {
		t.Errorf("expected structured field in log file, got %q", content)
	}
	if strings.Contains(content, "filtered out") {
		t.Errorf("debug line should be filtered at info level")
	}
}

func TestRotatingFileOptions(t *testing.T) {
	lj := rotatingFile(FileOptions{Path: "chanserv.log", MaxBackups: 3, MaxAgeDays: 28})
	if lj.MaxSize != 100 {
		t.Errorf("expected default max size 100, got %d", lj.MaxSize)
	}
	if lj.MaxBackups != 3 || lj.MaxAge != 28 {
		t.Errorf("rotation limits not applied: backups %d age %d", lj.MaxBackups, lj.MaxAge)
	}

	lj = rotatingFile(FileOptions{Path: "chanserv.log", MaxSizeMB: 5})
	if lj.MaxSize != 5 {
		t.Errorf("expected max size 5, got %d", lj.MaxSize)
	}
}
