// Command gen-scanlog emits a synthetic scan log for replay testing:
// box-shaped surface clusters with furniture-plausible dimensions,
// interleaved with noise clusters and anchor removals.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/banshee-data/roomscan/internal/scan/scanlog"
)

var (
	outPath = flag.String("out", "scan.log", "Output path for the generated log")
	objects = flag.Int("objects", 6, "Number of furniture-sized objects")
	updates = flag.Int("updates", 4, "Mesh updates per object (simulates scan settling)")
	noise   = flag.Int("noise", 10, "Number of small noise clusters")
	seed    = flag.Int64("seed", 1, "Random seed")
)

// furniture-plausible box dimensions (width, height, depth in meters)
var shapes = [][3]float64{
	{1.2, 0.75, 1.0},  // dining table
	{0.5, 0.9, 0.5},   // chair
	{1.5, 0.5, 2.0},   // bed
	{0.8, 1.8, 0.5},   // wardrobe
	{0.9, 0.6, 0.9},   // coffee table
	{0.6, 0.55, 0.6},  // side unit
}

func main() {
	flag.Parse()

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(*seed))
	w := scanlog.NewWriter(f)
	ts := time.Now().UnixNano()
	records := 0

	emit := func(rec *scanlog.Record) {
		rec.TSUnixNanos = ts
		ts += int64(250 * time.Millisecond)
		if err := w.Write(rec); err != nil {
			log.Fatalf("write record: %v", err)
		}
		records++
	}

	for i := 0; i < *objects; i++ {
		dims := shapes[i%len(shapes)]
		meshID := fmt.Sprintf("anchor_%02d", i)
		// Spread objects out so they survive spatial dedup.
		origin := [3]float64{float64(i%4) * 2.5, 0, float64(i/4) * 2.5}

		for u := 0; u < *updates; u++ {
			// Later updates are denser, mimicking a settling scan.
			vertexCount := 80 + (u+1)*120
			event := scanlog.EventUpdated
			if u == 0 {
				event = scanlog.EventAdded
			}
			emit(&scanlog.Record{
				Event:    event,
				MeshID:   meshID,
				Vertices: boxVertices(rng, origin, dims, vertexCount),
				Faces:    randomFaces(rng, vertexCount, vertexCount/2+20),
			})
		}
	}

	for i := 0; i < *noise; i++ {
		// Tiny sparse clusters that should fail the size gate.
		origin := [3]float64{rng.Float64() * 8, rng.Float64() * 2, rng.Float64() * 8}
		dims := [3]float64{0.05, 0.05, 0.05}
		emit(&scanlog.Record{
			Event:    scanlog.EventAdded,
			MeshID:   fmt.Sprintf("noise_%02d", i),
			Vertices: boxVertices(rng, origin, dims, 20),
			Faces:    randomFaces(rng, 20, 8),
		})
	}

	// Retract a couple of anchors; hypotheses should survive.
	for i := 0; i < *objects && i < 2; i++ {
		emit(&scanlog.Record{
			Event:  scanlog.EventRemoved,
			MeshID: fmt.Sprintf("anchor_%02d", i),
		})
	}

	if err := w.Flush(); err != nil {
		log.Fatalf("flush output: %v", err)
	}
	log.Printf("wrote %d records to %s", records, *outPath)
}

// boxVertices samples n points on the surface of an axis-aligned box,
// always including the two extreme corners so the bounding box is exact.
func boxVertices(rng *rand.Rand, origin, dims [3]float64, n int) [][3]float64 {
	if n < 2 {
		n = 2
	}
	out := make([][3]float64, 0, n)
	out = append(out,
		origin,
		[3]float64{origin[0] + dims[0], origin[1] + dims[1], origin[2] + dims[2]},
	)
	for len(out) < n {
		p := [3]float64{
			origin[0] + rng.Float64()*dims[0],
			origin[1] + rng.Float64()*dims[1],
			origin[2] + rng.Float64()*dims[2],
		}
		// Snap one axis to a face so points lie on the box surface.
		axis := rng.Intn(3)
		if rng.Intn(2) == 0 {
			p[axis] = origin[axis]
		} else {
			p[axis] = origin[axis] + dims[axis]
		}
		out = append(out, p)
	}
	return out
}

func randomFaces(rng *rand.Rand, vertexCount, n int) [][3]uint32 {
	out := make([][3]uint32, n)
	for i := range out {
		out[i] = [3]uint32{
			uint32(rng.Intn(vertexCount)),
			uint32(rng.Intn(vertexCount)),
			uint32(rng.Intn(vertexCount)),
		}
	}
	return out
}
