// Package eventlog records game events as zstd-compressed JSON lines and
// reads them back for replays and analysis.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/powergrid/internal/game"
)

// Ext is the file extension of event logs.
const Ext = ".jsonl.zst"

// Entry is one line of the log.
type Entry struct {
	Seq   int             `json:"seq"`
	Time  time.Time       `json:"time"`
	Kind  string          `json:"kind"`
	Event json.RawMessage `json:"event"`
}

// Writer appends events to a compressed JSONL stream.
type Writer struct {
	mu    sync.Mutex
	enc   *zstd.Encoder
	w     *bufio.Writer
	f     io.Closer
	seq   int
	err   error
	clock func() time.Time
}

// NewWriter compresses onto w. Closing the Writer does not close w.
func NewWriter(w io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	return &Writer{
		enc:   enc,
		w:     bufio.NewWriterSize(enc, 64*1024),
		clock: time.Now,
	}, nil
}

// Create opens a new log file at path, creating parent directories.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.f = f
	return w, nil
}

// Write appends one event.
func (w *Writer) Write(ev game.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.enc == nil {
		return fmt.Errorf("eventlog: write on closed log")
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("eventlog: encode %s: %w", ev.Kind(), err)
	}
	w.seq++
	line, err := json.Marshal(Entry{Seq: w.seq, Time: w.clock().UTC(), Kind: ev.Kind(), Event: body})
	if err != nil {
		return fmt.Errorf("eventlog: %w", err)
	}
	if _, err := w.w.Write(line); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Attach subscribes the writer to every event of c. The first write error
// is kept and reported by Err. The returned function detaches the writer.
func (w *Writer) Attach(c *game.Controller) (detach func()) {
	return c.Subscribe(func(ev game.Event) {
		if err := w.Write(ev); err != nil {
			w.mu.Lock()
			if w.err == nil {
				w.err = err
			}
			w.mu.Unlock()
		}
	})
}

// Err returns the first error hit by an attached writer.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Count returns the number of events written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq
}

// Close flushes the stream and closes the file opened by Create.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.enc == nil {
		return nil
	}
	err := w.w.Flush()
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	w.enc = nil
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	return err
}

// Read decodes every entry of a compressed log.
func Read(r io.Reader) ([]Entry, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	defer dec.Close()

	var entries []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("eventlog: line %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	return entries, nil
}

// ReadFile decodes the log at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Decode turns an entry back into its typed event.
func (e Entry) Decode() (game.Event, error) {
	var ev game.Event
	switch e.Kind {
	case game.ScoreChanged{}.Kind():
		ev = decodeAs[game.ScoreChanged](e.Event)
	case game.MoneyChanged{}.Kind():
		ev = decodeAs[game.MoneyChanged](e.Event)
	case game.DayChanged{}.Kind():
		ev = decodeAs[game.DayChanged](e.Event)
	case game.PowerUpdate{}.Kind():
		ev = decodeAs[game.PowerUpdate](e.Event)
	case game.GameOver{}.Kind():
		ev = decodeAs[game.GameOver](e.Event)
	case game.DisasterWarning{}.Kind():
		ev = decodeAs[game.DisasterWarning](e.Event)
	case game.NewObjective{}.Kind():
		ev = decodeAs[game.NewObjective](e.Event)
	case game.EarthquakeReport{}.Kind():
		ev = decodeAs[game.EarthquakeReport](e.Event)
	case game.RepairDone{}.Kind():
		ev = decodeAs[game.RepairDone](e.Event)
	case game.Notice{}.Kind():
		ev = decodeAs[game.Notice](e.Event)
	default:
		return nil, fmt.Errorf("eventlog: unknown event kind %q", e.Kind)
	}
	if ev == nil {
		return nil, fmt.Errorf("eventlog: malformed %s event", e.Kind)
	}
	return ev, nil
}

func decodeAs[T game.Event](raw json.RawMessage) game.Event {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
