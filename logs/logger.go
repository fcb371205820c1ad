// Package logs builds the structured logger: a text handler fanned out with the systemd journal
package logs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"

	"github.com/lixenwraith/mpc-car/core"
)

// Options configures New
type Options struct {
	Level string
	// File receives the text handler output when Writer is nil, empty means stderr
	File   string
	Writer io.Writer
	// Journal adds the systemd journal handler, JournalAuto enables it for systemd services
	Journal JournalMode
	// RunID tags every record, generated when empty
	RunID string
}

// JournalMode selects whether records also go to the systemd journal
type JournalMode uint8

const (
	JournalAuto JournalMode = iota
	JournalOn
	JournalOff
)

// Logger is a slog logger with its level control and output file
type Logger struct {
	*slog.Logger
	Level  *slog.LevelVar
	RunID  string
	closer io.Closer
}

// New creates the run logger
func New(opts Options) (*Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var closer io.Closer
	writer := opts.Writer
	if writer == nil {
		if opts.File == "" {
			writer = os.Stderr
		} else {
			f, err := OpenFile(opts.File)
			if err != nil {
				return nil, err
			}
			writer, closer = f, f
		}
	}

	textHandler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	handlers := []slog.Handler{textHandler}

	journal := opts.Journal == JournalOn || (opts.Journal == JournalAuto && IsSystemdService())
	if journal {
		journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceGroup: func(key string) string {
				return toJournalKey(key)
			},
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = toJournalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "new systemd journal handler", 0)
			record.Add("error", err)
			_ = textHandler.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journalHandler)
		}
	}

	logger := slog.New(slogmulti.Fanout(handlers...)).With("run", runID)
	return &Logger{Logger: logger, Level: level, RunID: runID, closer: closer}, nil
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ParseLevel maps debug, info, warn and error, empty means info
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.Wrapf(core.ErrInvalidConfiguration, "unknown log level %q", s)
}

// IsSystemdService reports whether the process runs inside a systemd service cgroup
func IsSystemdService() bool {
	cgroupPath, err := getCgroupPath()
	if err != nil {
		return false
	}
	return strings.HasSuffix(path.Dir(cgroupPath), ".service")
}

func toJournalKey(str string) string {
	str = strings.ToUpper(str)
	str = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, str)
	return str
}

func getCgroupPath() (string, error) {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return "", err
	}
	parts := strings.Split(strings.TrimSpace(string(content)), ":")
	if len(parts) >= 3 {
		return parts[2], nil
	}
	return "", nil
}
