package middleware

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/shrek82/dbquery/core"
)

// SlowLogMiddleware logs statements that take longer than the
// configured threshold.
type SlowLogMiddleware struct {
	Threshold time.Duration
	LogPath   string
	logger    *log.Logger
	file      *os.File
}

// NewSlowLog creates a new SlowLogMiddleware. Statements slower than
// threshold are logged to logPath, or to standard output when logPath
// is empty.
func NewSlowLog(threshold time.Duration, logPath string) *SlowLogMiddleware {
	return &SlowLogMiddleware{
		Threshold: threshold,
		LogPath:   logPath,
	}
}

// SetOutput sets the output destination for the logger.
func (m *SlowLogMiddleware) SetOutput(w io.Writer) {
	m.logger = log.New(w, "[SLOW SQL] ", log.LstdFlags)
}

func (m *SlowLogMiddleware) Name() string {
	return "SlowLog"
}

func (m *SlowLogMiddleware) Init(mgr *core.Manager) error {
	// If the logger was already set via SetOutput, keep it.
	if m.logger != nil {
		return nil
	}

	if m.LogPath != "" {
		f, err := os.OpenFile(m.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open slow log file: %w", err)
		}
		m.file = f
		m.logger = log.New(f, "[SLOW SQL] ", log.LstdFlags)
	} else {
		m.logger = log.New(os.Stdout, "[SLOW SQL] ", log.LstdFlags)
	}
	return nil
}

func (m *SlowLogMiddleware) Shutdown() error {
	if m.file != nil {
		return m.file.Close()
	}
	return nil
}

func (m *SlowLogMiddleware) Process(ctx context.Context, inv *core.Invocation, next core.Next) (any, error) {
	start := time.Now()
	res, err := next(ctx, inv)
	duration := time.Since(start)

	if duration >= m.Threshold {
		m.logger.Printf("duration=%v | sql=%s | args=%v | err=%v", duration, inv.Statement.SQL(), inv.Args, err)
	}

	return res, err
}
