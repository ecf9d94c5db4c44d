package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/clinicai/internal/appointment"
	"github.com/Skufu/clinicai/internal/clinic"
	"github.com/Skufu/clinicai/internal/patient"
	"github.com/Skufu/clinicai/internal/risk"
	"github.com/Skufu/clinicai/internal/store"
	"github.com/Skufu/clinicai/internal/trend"
)

// Health summaries read the ten most recent records.
const summaryRecordLimit = 10

type handlers struct {
	engines engines
	store   patientStore
	now     func() time.Time
}

func (h *handlers) diagnose(c *gin.Context) {
	var req diagnosisRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.engines.diagnose(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) checkInteractions(c *gin.Context) {
	var req interactionRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.engines.checkInteractions(req))
}

func (h *handlers) scoreRisk(c *gin.Context) {
	var req riskRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.engines.scoreRisk(req))
}

func (h *handlers) predictNoShow(c *gin.Context) {
	var req noShowRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.engines.predictNoShow(req))
}

func (h *handlers) analyzeTrends(c *gin.Context) {
	var req trendRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.engines.analyzeTrends(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) suggestSlots(c *gin.Context) {
	priority := appointment.Priority(c.DefaultQuery("priority", string(appointment.PriorityNormal)))
	if priority != appointment.PriorityHigh && priority != appointment.PriorityNormal {
		respondError(c, &clinic.InputError{Field: "priority", Reason: "must be high or normal"})
		return
	}
	c.JSON(http.StatusOK, appointment.SuggestSlots(priority))
}

type healthSummaryResponse struct {
	PatientID          string          `json:"patient_id"`
	Risk               risk.Assessment `json:"risk"`
	Trends             trend.Result    `json:"trends"`
	Summary            string          `json:"summary"`
	TotalConsultations int             `json:"total_consultations"`
	LastVisit          *time.Time      `json:"last_visit"`
}

// healthSummary scores the patient, stores the score on the latest record
// and returns it together with trends and the consultation summary.
func (h *handlers) healthSummary(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := h.now()

	profile, err := h.store.PatientContext(ctx, id, now)
	if err != nil {
		respondError(c, err)
		return
	}
	vitals, err := h.store.VitalsHistory(ctx, id, summaryRecordLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	notes, err := h.store.RecordNotes(ctx, id, summaryRecordLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	assessment := risk.Score(profile, vitals)
	recordID, err := h.store.LatestRecordID(ctx, id)
	switch {
	case err == nil:
		if err := h.store.SaveRiskScore(ctx, recordID, assessment.Score); err != nil {
			respondError(c, err)
			return
		}
	case !errors.Is(err, store.ErrNotFound):
		respondError(c, err)
		return
	}

	trends, err := trend.Analyze(vitals)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := healthSummaryResponse{
		PatientID:          id.String(),
		Risk:               assessment,
		Trends:             trends,
		Summary:            h.engines.summarizer.Summarize(ctx, notes),
		TotalConsultations: len(notes),
	}
	if len(notes) > 0 {
		last := notes[len(notes)-1].Date
		resp.LastVisit = &last
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) patientStats(c *gin.Context) {
	profiles, err := h.store.PatientProfiles(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient.Summarize(profiles))
}

func (h *handlers) appointmentAnalytics(c *gin.Context) {
	visits, err := h.store.Visits(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment.Analyze(visits, h.now()))
}

func (h *handlers) predictAppointmentNoShow(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	features, err := h.store.AppointmentFeatures(c.Request.Context(), id, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	assessment := appointment.Assess(features)
	c.JSON(http.StatusOK, gin.H{
		"appointment_id": id.String(),
		"features":       features,
		"prediction":     assessment,
	})
}

func (h *handlers) checkPrescription(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	meds, err := h.store.PrescribedMedications(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	report := h.engines.checker.Check(meds)
	if err := h.store.SaveInteractionCheck(ctx, id, report); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
