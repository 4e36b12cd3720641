// Package scanlog defines the JSON-lines format for recorded mesh-event
// streams, used to replay scan sessions offline.
package scanlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/roomscan/internal/scan/mesh"
	"github.com/banshee-data/roomscan/internal/scan/pipeline"
)

// Event kinds carried in a scan log.
const (
	EventAdded   = "added"
	EventUpdated = "updated"
	EventRemoved = "removed"
)

// Record is one line of a scan log. LocalToWorld nil means identity.
// Removed events carry only the event kind and mesh id.
type Record struct {
	Event        string       `json:"event"`
	MeshID       string       `json:"mesh_id"`
	LocalToWorld *[16]float64 `json:"local_to_world,omitempty"`
	Vertices     [][3]float64 `json:"vertices,omitempty"`
	Faces        [][3]uint32  `json:"faces,omitempty"`
	TSUnixNanos  int64        `json:"ts_unix_nanos,omitempty"`
}

// ToMeshUpdate converts a record into the pipeline input type.
func (r *Record) ToMeshUpdate() *mesh.MeshUpdate {
	u := &mesh.MeshUpdate{
		MeshID:       r.MeshID,
		LocalToWorld: mesh.IdentityPose(),
		Faces:        r.Faces,
	}
	if r.LocalToWorld != nil {
		u.LocalToWorld = *r.LocalToWorld
	}
	u.Vertices = make([]r3.Vec, len(r.Vertices))
	for i, v := range r.Vertices {
		u.Vertices[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
	}
	return u
}

// maxLineBytes bounds one scan-log line; dense meshes serialise large.
const maxLineBytes = 16 * 1024 * 1024

// Reader decodes scan-log records line by line.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps r for record-at-a-time reading.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{sc: sc}
}

// Next returns the next record, or io.EOF when the log is exhausted.
func (r *Reader) Next() (*Record, error) {
	for r.sc.Scan() {
		r.line++
		raw := r.sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("scanlog line %d: %w", r.line, err)
		}
		return &rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("scanlog read: %w", err)
	}
	return nil, io.EOF
}

// Writer encodes records as JSON lines.
type Writer struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

// NewWriter wraps w for record-at-a-time writing.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{bw: bw, enc: json.NewEncoder(bw)}
}

// Write appends one record.
func (w *Writer) Write(rec *Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("scanlog write: %w", err)
	}
	return nil
}

// Flush flushes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// Source replays a scan log through a MeshEventHandler. It implements
// pipeline.MeshEventSource.
type Source struct {
	reader *Reader

	// Interval, when > 0, paces delivery to one event per interval.
	Interval time.Duration
}

// NewSource creates a replay source over r.
func NewSource(r io.Reader) *Source {
	return &Source{reader: NewReader(r)}
}

// Run delivers every record to the handler in log order until the log
// is exhausted or the context is cancelled.
func (s *Source) Run(ctx context.Context, h pipeline.MeshEventHandler) error {
	var ticker *time.Ticker
	if s.Interval > 0 {
		ticker = time.NewTicker(s.Interval)
		defer ticker.Stop()
	}

	for {
		rec, err := s.reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		switch rec.Event {
		case EventAdded:
			h.MeshAdded(rec.ToMeshUpdate())
		case EventUpdated:
			h.MeshUpdated(rec.ToMeshUpdate())
		case EventRemoved:
			h.MeshRemoved(rec.MeshID)
		default:
			return fmt.Errorf("scanlog: unknown event kind %q", rec.Event)
		}
	}
}
