package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"portfolio-backend-go/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxLogRetentionDays = 7

// dailyFile is an io.Writer that appends to app-YYYY-MM-DD.log and switches
// files when the date changes.
type dailyFile struct {
	mu          sync.Mutex
	dir         string
	retention   int
	currentDate string
	file        *os.File
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return len(p), nil
	}
	return d.file.Write(p)
}

func (d *dailyFile) rotate(now time.Time) error {
	date := now.Format("2006-01-02")
	d.mu.Lock()
	defer d.mu.Unlock()
	if date == d.currentDate && d.file != nil {
		return nil
	}
	newFile, err := openLogFile(d.dir, date)
	if err != nil {
		return err
	}
	if d.file != nil {
		_ = d.file.Close()
	}
	d.file = newFile
	d.currentDate = date
	cleanupOldLogs(d.dir, d.retention, now)
	return nil
}

func (d *dailyFile) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file != nil {
		_ = d.file.Close()
		d.file = nil
	}
}

// setupLogger configures the global zerolog logger to write to stdout and
// the daily file. The returned func stops rotation and closes the file.
func setupLogger(cfg config.Config) (func(), error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var stdout io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(stdout).With().Timestamp().Logger()

	retention := cfg.LogRetentionDays
	if retention <= 0 || retention > maxLogRetentionDays {
		retention = maxLogRetentionDays
	}
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, err
	}
	file := &dailyFile{dir: cfg.LogDir, retention: retention}
	if err := file.rotate(time.Now()); err != nil {
		return nil, err
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(stdout, file)).With().Timestamp().Logger()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if err := file.rotate(now); err != nil {
					log.Error().Err(err).Msg("log rotation failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		file.Close()
	}, nil
}

func openLogFile(logDir, date string) (*os.File, error) {
	filename := filepath.Join(logDir, fmt.Sprintf("app-%s.log", date))
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func cleanupOldLogs(logDir string, retentionDays int, now time.Time) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, -(retentionDays - 1))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		datePart := strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log")
		logDate, err := time.ParseInLocation("2006-01-02", datePart, now.Location())
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}
