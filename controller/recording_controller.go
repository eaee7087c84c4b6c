package controller

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"sensor-recorder/metrics"
	"sensor-recorder/models"
	"sensor-recorder/services/align"
	"sensor-recorder/utils"
	"sensor-recorder/views"
)

// Export is the aligned result of one session, ready to be written. It is
// immutable once built, so a failed write can be retried without merging again.
type Export struct {
	SessionID uuid.UUID
	StartedAt time.Time
	Mode      align.FillMode
	Rows      []models.MergedRow
	Batches   []models.LoudnessBatch // coalesced loudness batches
	Source    *Snapshot
}

// RecordingController is the final pipeline stage. It turns a session
// snapshot into the merged table and writes every export sheet:
//   - total.csv          merged, time-aligned rows
//   - decibel.csv        raw samples per loudness batch
//   - accelerometer.csv  accelerometer readings with magnitude
//   - gyroscope.csv      gyroscope readings with magnitude
type RecordingController struct {
	storage    utils.StorageConfig
	sampleRate int
	metrics    *metrics.Metrics
	now        func() time.Time

	mu   sync.Mutex
	last *Export
}

// NewRecordingController prepares the export stage. m may be nil.
func NewRecordingController(storage utils.StorageConfig, sampleRate int, m *metrics.Metrics) *RecordingController {
	if m == nil {
		m = metrics.New(nil)
	}
	return &RecordingController{storage: storage, sampleRate: sampleRate, metrics: m, now: time.Now}
}

// Prepare coalesces and merges snap. The result is cached; a later snapshot
// of the same session at the same revision, with the same mode, returns the
// cached Export without merging again.
func (rc *RecordingController) Prepare(snap *Snapshot, mode align.FillMode) (*Export, error) {
	if snap == nil || snap.Empty() {
		return nil, ErrNothingRecorded
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if l := rc.last; l != nil && l.Mode == mode &&
		l.SessionID == snap.SessionID && l.Source.Revision == snap.Revision {
		return l, nil
	}

	start := time.Now()
	batches := align.Coalesce(snap.Loudness)
	points := align.Distribute(batches, rc.sampleRate)
	rows := align.MergeWith(mode, points, snap.Accel, snap.Gyro)
	rc.metrics.RecordMerge(len(rows), time.Since(start).Seconds())

	rc.last = &Export{
		SessionID: snap.SessionID,
		StartedAt: snap.StartedAt,
		Mode:      mode,
		Rows:      rows,
		Batches:   batches,
		Source:    snap,
	}
	utils.L().Info("merged session %s: %d rows (mode=%s, %s)", snap.SessionID, len(rows), mode, time.Since(start))
	return rc.last, nil
}

// Write stores every sheet of exp under a directory named for the save time
// and returns its path. Without overwrite, a taken name gets a numeric
// suffix. A directory created by a failed write is removed again.
func (rc *RecordingController) Write(exp *Export) (dir string, err error) {
	defer func() { rc.metrics.RecordExport(err) }()

	dir = filepath.Join(rc.storage.BaseDir, utils.SessionName(rc.storage.SessionPrefix, rc.now()))
	if !rc.storage.Overwrite {
		dir = freeDir(dir)
	}
	_, statErr := os.Stat(dir)
	created := errors.Is(statErr, os.ErrNotExist)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	for _, sheet := range views.Sheets {
		if err := rc.writeSheet(dir, sheet, exp); err != nil {
			if created {
				_ = os.RemoveAll(dir)
			}
			return "", err
		}
	}
	utils.L().Info("export written  session=%s  rows=%d  dir=%s", exp.SessionID, len(exp.Rows), dir)
	return dir, nil
}

// freeDir returns dir, or dir_2, dir_3 ... for the first name not in use.
func freeDir(dir string) string {
	candidate := dir
	for n := 2; ; n++ {
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", dir, n)
	}
}

// Save prepares and writes snap in one call.
func (rc *RecordingController) Save(snap *Snapshot, mode align.FillMode) (string, error) {
	exp, err := rc.Prepare(snap, mode)
	if err != nil {
		return "", err
	}
	return rc.Write(exp)
}

// Last returns the most recently prepared export, or nil.
func (rc *RecordingController) Last() *Export {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.last
}

func (rc *RecordingController) writeSheet(dir string, sheet views.Sheet, exp *Export) (err error) {
	w, err := views.CreateSheet(dir, sheet, rc.storage.CSV.BufferSizeKB, rc.storage.CSV.WriteHeader)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, w.Close()) }()

	switch sheet {
	case views.SheetTotal:
		for i := range exp.Rows {
			if err := w.Write(exp.Rows[i].CSVRow()); err != nil {
				return err
			}
		}
	case views.SheetDecibel:
		for i := range exp.Batches {
			if err := w.WriteAll(exp.Batches[i].SampleRows()); err != nil {
				return err
			}
		}
	case views.SheetAccelerometer:
		return writeMotion(w, exp.Source.Accel)
	case views.SheetGyroscope:
		return writeMotion(w, exp.Source.Gyro)
	}
	return nil
}

func writeMotion(w *views.SheetWriter, samples []models.MotionSample) error {
	for i := range samples {
		if err := w.Write(samples[i].CSVRow()); err != nil {
			return err
		}
	}
	return nil
}
