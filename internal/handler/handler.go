package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"faceattend/internal/attendance"
	"faceattend/internal/auth"
	"faceattend/internal/config"
	"faceattend/internal/detector"
	"faceattend/internal/enroll"
	"faceattend/internal/gallery"
	"faceattend/internal/match"
	"faceattend/internal/metrics"
	"faceattend/internal/model"
	"faceattend/internal/queue"
	"faceattend/internal/store"
)

// Handler wires the HTTP surface to the enrollment, matching and
// recording services.
type Handler struct {
	cfg      config.App
	enroll   *enroll.Service
	recorder *attendance.Recorder
	reporter *attendance.Reporter
	gallery  *gallery.Gallery
	detector *detector.Client
	staff    *store.StaffRepository
	q        queue.Queue
}

// New creates a handler.
func New(cfg config.App, svc *enroll.Service, rec *attendance.Recorder, rep *attendance.Reporter,
	g *gallery.Gallery, det *detector.Client, staff *store.StaffRepository, q queue.Queue) *Handler {
	return &Handler{
		cfg:      cfg,
		enroll:   svc,
		recorder: rec,
		reporter: rep,
		gallery:  g,
		detector: det,
		staff:    staff,
		q:        q,
	}
}

// ---------- Enrollment ----------

type enrollRequest struct {
	Name string `form:"name" binding:"required"`
	Age  int    `form:"age"`
	Role string `form:"role"`
}

// EnrollStaff registers a new identity from a multipart form with fields
// name, age, role and a photo file.
func (h *Handler) EnrollStaff(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	photoBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read photo"})
		return
	}

	st, err := h.enroll.Enroll(c.Request.Context(), enroll.NewStaff{
		Name:     req.Name,
		Age:      req.Age,
		Role:     req.Role,
		Image:    photoBytes,
		Filename: header.Filename,
	})
	if err != nil {
		switch {
		case errors.Is(err, enroll.ErrDuplicateName):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, enroll.ErrNoFaceDetected):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			log.Printf("enroll %q failed: %v", req.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enrollment failed"})
		}
		return
	}

	metrics.Enrollments.Inc()
	metrics.GallerySize.Set(float64(h.gallery.Size()))

	// Tell workers their gallery copy is stale.
	if h.q != nil {
		if err := h.q.Publish(c.Request.Context(), queue.Message{Type: queue.TypeReload}); err != nil {
			log.Printf("gallery reload notify failed: %v", err)
		}
	}

	c.JSON(http.StatusCreated, st)
}

// ListStaff returns all enrolled identities.
func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.staff.ListStaff(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if staff == nil {
		staff = []model.Staff{}
	}
	c.JSON(http.StatusOK, staff)
}

// GetStaff returns a single identity by display name.
func (h *Handler) GetStaff(c *gin.Context) {
	st, err := h.staff.GetStaffByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if st == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// ---------- Recognition ----------

type faceResult struct {
	Name       string                 `json:"name"`
	Matched    bool                   `json:"matched"`
	Region     *detector.Region       `json:"region,omitempty"`
	Attendance *model.AttendanceEvent `json:"attendance,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Recognize runs the capture pipeline on an uploaded frame: detect faces,
// identify each descriptor against the gallery and record attendance for
// every match. Unknown faces are reported but never reach the recorder.
func (h *Handler) Recognize(c *gin.Context) {
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	photoBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read photo"})
		return
	}

	det, err := h.detector.Detect(c.Request.Context(), photoBytes, header.Filename)
	if err != nil {
		log.Printf("face detection failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "face detection failed"})
		return
	}

	// One snapshot for the whole frame: every face in this capture is
	// matched against the same gallery state.
	entries := h.gallery.Snapshot()

	results := make([]faceResult, 0, len(det.Descriptors))
	for i, desc := range det.Descriptors {
		name := match.Identify(entries, desc, h.cfg.MatchTolerance)
		res := faceResult{Name: name}
		if i < len(det.Regions) {
			res.Region = &det.Regions[i]
		}

		if name == match.Unknown {
			metrics.Recognitions.WithLabelValues("unknown").Inc()
			results = append(results, res)
			continue
		}

		metrics.Recognitions.WithLabelValues("matched").Inc()
		res.Matched = true
		evt, err := h.recorder.Record(c.Request.Context(), name)
		if err != nil {
			log.Printf("attendance for %q not recorded: %v", name, err)
			res.Error = "attendance not recorded"
		} else {
			res.Attendance = evt
			metrics.AttendanceEvents.Inc()
		}
		results = append(results, res)
	}

	c.JSON(http.StatusOK, gin.H{"faces": results, "faces_detected": len(det.Descriptors)})
}

// ---------- Report ----------

// ListAttendance returns the attendance report, newest first.
func (h *Handler) ListAttendance(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.reporter.Report(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": rows})
}

// ---------- Devices ----------

// RegisterDevice issues kiosk tokens for the capture endpoints.
func (h *Handler) RegisterDevice(c *gin.Context) {
	var req struct {
		DeviceID string `json:"device_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := auth.Issue(req.DeviceID, "device", h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// EnqueueCapture accepts an already-uploaded frame by URL and hands it to
// the worker pipeline.
func (h *Handler) EnqueueCapture(c *gin.Context) {
	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.q == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "capture queue not configured"})
		return
	}
	if err := h.q.Publish(c.Request.Context(), queue.Message{Type: queue.TypeCapture, Body: []byte(req.ImageURL)}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
