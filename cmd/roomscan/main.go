// Command roomscan replays a recorded mesh-event log through the
// furniture-hypothesis pipeline and reports the accepted set. It stands
// in for the on-device scan session during tuning and offline analysis.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/roomscan/internal/config"
	"github.com/banshee-data/roomscan/internal/scan/hypothesis"
	"github.com/banshee-data/roomscan/internal/scan/monitor"
	"github.com/banshee-data/roomscan/internal/scan/pipeline"
	"github.com/banshee-data/roomscan/internal/scan/scanlog"
	scansqlite "github.com/banshee-data/roomscan/internal/scan/storage/sqlite"
)

var (
	logPath    = flag.String("log", "", "Scan log to replay (JSON lines)")
	dbFile     = flag.String("db", "", "Optional sqlite database for session recording")
	listenAddr = flag.String("listen", "", "Optional monitor listen address (e.g. :8080)")
	configPath = flag.String("config", "", "Optional tuning config (JSON)")
	rate       = flag.Float64("rate", 0, "Replay rate in events per second (0 = full speed)")
	verbose    = flag.Bool("v", false, "Enable per-update trace logging")
)

// printNotify is the renderer stand-in: it prints incremental adds and
// full rebuild signals the way a visualiser would consume them.
type printNotify struct{}

func (printNotify) HypothesisAccepted(h hypothesis.Hypothesis) {
	fmt.Printf("+ %-9s  conf=%.2f  pos=(%.2f, %.2f, %.2f)  dims=(%.2f x %.2f x %.2f)  mesh=%s\n",
		h.Class, h.Confidence,
		h.Position.X, h.Position.Y, h.Position.Z,
		h.Dimensions.X, h.Dimensions.Y, h.Dimensions.Z,
		h.SourceMeshID)
}

func (printNotify) HypothesesCleared(reason hypothesis.ClearReason) {
	fmt.Printf("x set cleared (%s)\n", reason)
}

func main() {
	flag.Parse()

	if *logPath == "" {
		log.Fatal("-log is required")
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	var traceWriter io.Writer
	if *verbose {
		traceWriter = os.Stderr
	}
	pipeline.SetLogWriters(os.Stderr, os.Stderr, traceWriter)

	var sink pipeline.PersistenceSink
	if *dbFile != "" {
		db, err := sql.Open("sqlite", *dbFile)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
		store, err := scansqlite.NewHypothesisStore(db)
		if err != nil {
			log.Fatalf("init hypothesis store: %v", err)
		}
		sink = store
	}

	f, err := os.Open(*logPath)
	if err != nil {
		log.Fatalf("open scan log: %v", err)
	}
	defer f.Close()

	session := pipeline.NewSession(pipeline.SessionConfig{
		Tracker:       hypothesis.NewTracker(hypothesis.TrackerConfigFromTuning(tuning)),
		Sink:          sink,
		Notify:        printNotify{},
		MinConfidence: tuning.GetMinConfidence(),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *listenAddr != "" {
		go func() {
			if err := monitor.NewServer(*listenAddr, session).Start(ctx); err != nil {
				log.Printf("monitor server: %v", err)
			}
		}()
	}

	source := scanlog.NewSource(f)
	if *rate > 0 {
		source.Interval = time.Duration(float64(time.Second) / *rate)
	}

	session.Start()
	log.Printf("replaying %s as session %s", *logPath, session.ID())

	runErr := source.Run(ctx, session)

	counts := session.Stats().Snapshot()
	trackerCounts := session.Tracker().Counts()
	final := session.Tracker().Hypotheses()

	fmt.Printf("\nfinal set (%d hypotheses):\n", len(final))
	for _, h := range final {
		printNotify{}.HypothesisAccepted(h)
	}
	fmt.Printf("\nupdates=%d rejected_geometry=%d no_match=%d accepted=%d "+
		"cooldown_rejects=%d duplicate_rejects=%d capacity_resets=%d\n",
		counts.Updates, counts.RejectedGeometry, counts.NoMatch, counts.Accepted,
		trackerCounts.RejectedCooldown, trackerCounts.RejectedDuplicate,
		trackerCounts.CapacityResets)

	session.Stop()

	if runErr != nil && runErr != context.Canceled {
		log.Fatalf("replay: %v", runErr)
	}
}
