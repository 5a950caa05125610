package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"faceattend/internal/attendance"
	"faceattend/internal/config"
	"faceattend/internal/detector"
	"faceattend/internal/gallery"
	"faceattend/internal/match"
	"faceattend/internal/queue"
	"faceattend/internal/store"
)

// Worker consumes capture messages, runs detection + identification and
// records attendance for every match. It keeps its own gallery copy and
// rebuilds it when the API signals an enrollment.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "faceattend:captures")
	}

	staffRepo := store.NewStaffRepository(db.Client)
	eventRepo := store.NewEventRepository(db.Client)

	g := gallery.New(staffRepo)
	if err := g.Load(ctx); err != nil {
		log.Fatalf("gallery load failed: %v", err)
	}
	log.Printf("gallery loaded: %d identities", g.Size())

	recorder := attendance.NewRecorder(staffRepo, eventRepo, attendance.Options{OncePerDay: cfg.OncePerDay})

	face := detector.New(cfg.DetectorURL, cfg.DetectorSkip)
	if err := face.Health(ctx); err != nil {
		log.Printf("WARNING: face service not available: %v", err)
		log.Println("Worker will retry detection when captures arrive")
	} else {
		log.Println("face service connected")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for captures...")
	for msg := range messages {
		switch msg.Type {
		case queue.TypeReload:
			if err := g.Load(ctx); err != nil {
				log.Printf("gallery reload failed: %v", err)
			} else {
				log.Printf("gallery reloaded: %d identities", g.Size())
			}

		case queue.TypeCapture:
			processCapture(ctx, face, g, recorder, cfg.MatchTolerance, string(msg.Body))
		}
	}

	log.Println("worker stopped")
}

func processCapture(ctx context.Context, face *detector.Client, g *gallery.Gallery,
	recorder *attendance.Recorder, tolerance float64, imageURL string) {
	log.Printf("processing capture %s", imageURL)

	det, err := face.DetectURL(ctx, imageURL)
	if err != nil {
		log.Printf("detection failed for %s: %v", imageURL, err)
		return
	}
	if len(det.Descriptors) == 0 {
		log.Printf("capture %s: no faces detected", imageURL)
		return
	}

	entries := g.Snapshot()
	for _, desc := range det.Descriptors {
		name := match.Identify(entries, desc, tolerance)
		if name == match.Unknown {
			continue
		}
		evt, err := recorder.Record(ctx, name)
		if err != nil {
			log.Printf("attendance for %q not recorded: %v", name, err)
			continue
		}
		log.Printf("attendance recorded: %s at %s", name, evt.Timestamp.Format("15:04:05"))
	}
}
