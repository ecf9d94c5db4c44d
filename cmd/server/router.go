package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Skufu/clinicai/internal/appointment"
	"github.com/Skufu/clinicai/internal/clinic"
	"github.com/Skufu/clinicai/internal/logging"
	"github.com/Skufu/clinicai/internal/patient"
	"github.com/Skufu/clinicai/internal/store"
	"github.com/Skufu/clinicai/internal/summary"
)

// patientStore is the part of store.Store the patient-level endpoints need.
type patientStore interface {
	PatientContext(ctx context.Context, patientID uuid.UUID, now time.Time) (clinic.PatientContext, error)
	VitalsHistory(ctx context.Context, patientID uuid.UUID, limit int) ([]clinic.VitalsSample, error)
	RecordNotes(ctx context.Context, patientID uuid.UUID, limit int) ([]summary.RecordNote, error)
	LatestRecordID(ctx context.Context, patientID uuid.UUID) (uuid.UUID, error)
	SaveRiskScore(ctx context.Context, recordID uuid.UUID, score int) error
	AppointmentFeatures(ctx context.Context, appointmentID uuid.UUID, now time.Time) (appointment.Features, error)
	PrescribedMedications(ctx context.Context, prescriptionID uuid.UUID) ([]clinic.Medication, error)
	SaveInteractionCheck(ctx context.Context, prescriptionID uuid.UUID, report any) error
	PatientProfiles(ctx context.Context, now time.Time) ([]patient.Profile, error)
	Visits(ctx context.Context) ([]appointment.Visit, error)
}

type routerDeps struct {
	engines     engines
	db          HealthChecker
	store       patientStore
	logger      zerolog.Logger
	corsOrigins []string
	now         func() time.Time
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func setupRouter(deps routerDeps) *gin.Engine {
	if deps.now == nil {
		deps.now = time.Now
	}
	origins := deps.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(
		logging.RequestLogger(deps.logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if deps.db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	h := &handlers{engines: deps.engines, store: deps.store, now: deps.now}

	api := router.Group("/api")
	api.POST("/diagnosis", h.diagnose)
	api.POST("/interactions", h.checkInteractions)
	api.POST("/risk", h.scoreRisk)
	api.POST("/no-show", h.predictNoShow)
	api.POST("/trends", h.analyzeTrends)
	api.GET("/schedule/suggest", h.suggestSlots)

	if deps.store != nil {
		api.GET("/patients/stats", h.patientStats)
		api.GET("/appointments/analytics", h.appointmentAnalytics)
		api.GET("/patients/:id/health-summary", h.healthSummary)
		api.POST("/appointments/:id/predict-no-show", h.predictAppointmentNoShow)
		api.POST("/prescriptions/:id/check", h.checkPrescription)
	}

	return router
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// bindJSON writes the error response itself and reports whether the handler
// should continue.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]string, 0, len(ve))
		for _, fe := range ve {
			details = append(details, describeFieldError(fe))
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "details": details})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
	return false
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt", "gte", "lte", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func respondError(c *gin.Context, err error) {
	var inErr *clinic.InputError
	switch {
	case errors.As(err, &inErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "details": []string{inErr.Error()}})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s", name)})
		return uuid.Nil, false
	}
	return id, true
}
