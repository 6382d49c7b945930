// Package archive appends one compressed JSONL record per resolved night.
// A record carries the RNG seed the resolver was fed, which together with
// the stored submissions is enough to replay the pass. Archiving is best
// effort: a failed write is logged by the caller and never blocks a match.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// NightRecord is one line of the journal.
type NightRecord struct {
	MatchID    uint      `json:"match_id"`
	Night      int       `json:"night"`
	Seed       int64     `json:"seed"`
	ResolvedAt time.Time `json:"resolved_at"`
	Deaths     []uint    `json:"deaths,omitempty"`
	// Pending marks nights that closed into a killer selection rather
	// than straight into the next night.
	Pending bool `json:"pending,omitempty"`
}

var (
	mu      sync.Mutex
	baseDir string
	curDay  string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
)

// Configure sets the journal directory. An empty dir disables archiving;
// WriteNight becomes a no-op then.
func Configure(dir string) {
	mu.Lock()
	defer mu.Unlock()
	_ = closeLocked()
	baseDir = dir
	curDay = ""
}

// WriteNight appends one record. Files rotate per UTC day.
func WriteNight(rec NightRecord) error {
	mu.Lock()
	defer mu.Unlock()
	if baseDir == "" {
		return nil
	}

	day := time.Now().UTC().Format("2006-01-02")
	if day != curDay {
		if err := rotateLocked(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// Close flushes and closes the current journal file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func rotateLocked(day string) error {
	if err := closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(baseDir, fmt.Sprintf("nights-%s.jsonl.zst", day))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = file.Close()
		return err
	}
	f = file
	enc = encoder
	w = bufio.NewWriterSize(encoder, 64*1024)
	curDay = day
	return nil
}

func closeLocked() error {
	var err error
	if w != nil {
		_ = w.Flush()
	}
	if enc != nil {
		err = enc.Close()
		enc = nil
	}
	if f != nil {
		_ = f.Close()
		f = nil
	}
	w = nil
	return err
}
