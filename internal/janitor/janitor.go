// Package janitor sweeps stale spool files out of the storage root. Spool
// files are crash debris from interrupted atomic writes; finalized media is
// never touched, retention of it is an operational concern outside this
// process.
package janitor

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mediahook/mediahook/internal/media"
)

// Janitor periodically removes temp files older than maxAge.
type Janitor struct {
	root   string
	maxAge time.Duration
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a janitor over the storage root.
func New(log *slog.Logger, root string, maxAge time.Duration) *Janitor {
	if log == nil {
		log = slog.Default()
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Janitor{
		root:   root,
		maxAge: maxAge,
		cron:   cron.New(),
		logger: log.With(slog.String("service", "janitor")),
	}
}

// Start schedules the sweep and starts the cron runner.
func (j *Janitor) Start(schedule string) error {
	if schedule == "" {
		schedule = "@hourly"
	}
	if _, err := j.cron.AddFunc(schedule, func() {
		removed, err := j.Sweep()
		if err != nil {
			j.logger.Warn("sweep failed", slog.Any("error", err))
			return
		}
		if removed > 0 {
			j.logger.Info("swept stale spool files", slog.Int("removed", removed))
		}
	}); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop stops the cron runner and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// Sweep removes stale spool files in every category directory and returns
// how many it deleted.
func (j *Janitor) Sweep() (int, error) {
	cutoff := time.Now().Add(-j.maxAge)
	removed := 0
	for _, category := range media.Categories() {
		dir := filepath.Join(j.root, string(category))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, err
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".tmp") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
				j.logger.Warn("remove spool file failed",
					slog.String("file", name),
					slog.Any("error", err))
				continue
			}
			removed++
		}
	}
	return removed, nil
}
