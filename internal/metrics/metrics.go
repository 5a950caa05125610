package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Enrollments counts successful staff enrollments.
	Enrollments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceattend_enrollments_total",
		Help: "Successful staff enrollments.",
	})

	// Recognitions counts identify outcomes by result (matched / unknown).
	Recognitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faceattend_recognitions_total",
		Help: "Face identification attempts by outcome.",
	}, []string{"result"})

	// AttendanceEvents counts recorded presence events.
	AttendanceEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceattend_attendance_events_total",
		Help: "Attendance events written.",
	})

	// GallerySize tracks how many identities are loaded for matching.
	GallerySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "faceattend_gallery_size",
		Help: "Identities currently loaded in the matching gallery.",
	})
)
