package logs

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/mpc-car/constants"
	"github.com/lixenwraith/mpc-car/core"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				if !errors.Is(err, core.ErrInvalidConfiguration) {
					t.Fatalf("expected invalid configuration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_WritesRunAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Writer: &buf, Journal: JournalOff, RunID: "run-1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer logger.Close()

	logger.Info("started", "ticks", 3)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "msg=started") || !strings.Contains(out, "run=run-1") || !strings.Contains(out, "ticks=3") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record passed info level")
	}

	logger.Level.Set(slog.LevelDebug)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("level change not applied")
	}
}

func TestNew_GeneratesRunID(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(Options{Writer: &buf, Journal: JournalOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(Options{Writer: &buf, Journal: JournalOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.RunID == "" || a.RunID == b.RunID {
		t.Errorf("run ids not unique: %q %q", a.RunID, b.RunID)
	}
}

func TestNew_RejectsLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud", Journal: JournalOff}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_File(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "mpc-car.log")
	logger, err := New(Options{File: logPath, Journal: JournalOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("to file")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing record: %q", data)
	}
}

func TestOpenFile_Rotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "mpc-car.log")

	// Write just over the limit
	if err := os.WriteFile(logPath, make([]byte, constants.MaxLogSize+1), 0o644); err != nil {
		t.Fatalf("create large log: %v", err)
	}

	f, err := OpenFile(logPath)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected fresh log file, size %d", info.Size())
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "mpc-car.*.log"))
	if len(matches) != 1 {
		t.Fatalf("expected one rotated file, got %v", matches)
	}
	rotated, err := os.Stat(matches[0])
	if err != nil {
		t.Fatalf("stat rotated: %v", err)
	}
	if rotated.Size() != constants.MaxLogSize+1 {
		t.Errorf("rotated size = %d", rotated.Size())
	}
}

func TestOpenFile_SmallFileAppends(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "mpc-car.log")
	if err := os.WriteFile(logPath, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := OpenFile(logPath)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	f.WriteString("new\n")
	f.Close()

	data, _ := os.ReadFile(logPath)
	if string(data) != "old\nnew\n" {
		t.Errorf("content = %q", data)
	}
}

func TestRotatedName(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	if got := rotatedName("logs/mpc-car.log", now); got != "logs/mpc-car.20240305-140709.log" {
		t.Errorf("rotatedName = %q", got)
	}
}

func TestToJournalKey(t *testing.T) {
	if got := toJournalKey("target.x-pos"); got != "TARGET_X_POS" {
		t.Errorf("toJournalKey = %q", got)
	}
}
