package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/mpc-car/constants"
)

// OpenFile opens path for appending, creating its directory
// A file larger than constants.MaxLogSize is first renamed to <name>.<timestamp>.log
func OpenFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create log directory")
		}
	}

	if info, err := os.Stat(path); err == nil && info.Size() > constants.MaxLogSize {
		if err := os.Rename(path, rotatedName(path, time.Now())); err != nil {
			return nil, errors.Wrap(err, "rotate log file")
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	return f, nil
}

func rotatedName(path string, now time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s.%s.log", base, now.Format("20060102-150405"))
}
