package captures

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/ovalhq/pavilion/internal/store"
)

// Janitor periodically reconciles capture files against capture rows.
// Deleting a capture removes the row first and the file best-effort, so a
// crash in between leaves an orphaned file; the sweep picks those up.
type Janitor struct {
	store     store.ScoreboardStore
	files     *Storage
	scheduler *gocron.Scheduler
	interval  time.Duration
}

func NewJanitor(s store.ScoreboardStore, files *Storage, interval time.Duration) *Janitor {
	return &Janitor{
		store:     s,
		files:     files,
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
	}
}

func (j *Janitor) Start() error {
	if _, err := j.scheduler.Every(j.interval).Do(j.Sweep); err != nil {
		return err
	}
	j.scheduler.StartAsync()
	return nil
}

func (j *Janitor) Stop() {
	j.scheduler.Stop()
}

// Sweep removes files on disk that no capture row references. Files
// younger than one sweep interval are left alone: saving a capture writes
// the file before the row, and a sweep landing in that window would turn
// the row into the dangling half instead.
func (j *Janitor) Sweep() {
	referenced, err := j.store.ListCaptureFilenames()
	if err != nil {
		logger.Error.Printf("Capture sweep: failed to list capture rows: %v", err)
		return
	}

	known := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		known[name] = true
	}

	onDisk, err := j.files.ListOlderThan(j.interval)
	if err != nil {
		logger.Error.Printf("Capture sweep: failed to list capture files: %v", err)
		return
	}

	removed := 0
	for _, name := range onDisk {
		if known[name] {
			continue
		}
		if err := j.files.Remove(name); err != nil {
			logger.Error.Printf("Capture sweep: failed to remove %s: %v", name, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info.Printf("Capture sweep removed %d orphaned file(s)", removed)
	}
}
