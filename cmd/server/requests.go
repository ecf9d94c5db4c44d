package main

import (
	"context"

	"github.com/Skufu/clinicai/internal/appointment"
	"github.com/Skufu/clinicai/internal/clinic"
	"github.com/Skufu/clinicai/internal/diagnosis"
	"github.com/Skufu/clinicai/internal/interaction"
	"github.com/Skufu/clinicai/internal/risk"
	"github.com/Skufu/clinicai/internal/trend"
)

type diagnosisRequest struct {
	Symptoms string                `json:"symptoms" binding:"required"`
	Patient  clinic.PatientContext `json:"patient"`
}

type interactionRequest struct {
	Medications []clinic.Medication `json:"medications" binding:"max=100"`
}

type riskRequest struct {
	Patient       clinic.PatientContext `json:"patient"`
	VitalsHistory []clinic.VitalsSample `json:"vitals_history" binding:"max=500,dive"`
}

type noShowRequest = appointment.Features

type trendRequest struct {
	Samples []clinic.VitalsSample `json:"samples" binding:"max=500,dive"`
}

// The methods below are shared by the HTTP handlers and the analyze command.

func (e engines) diagnose(ctx context.Context, req diagnosisRequest) (diagnosis.Result, error) {
	return e.diagnoser.Diagnose(ctx, diagnosis.SymptomProfile{Symptoms: req.Symptoms, Patient: req.Patient})
}

func (e engines) checkInteractions(req interactionRequest) interaction.Report {
	return e.checker.Check(req.Medications)
}

func (e engines) scoreRisk(req riskRequest) risk.Assessment {
	return risk.Score(req.Patient, req.VitalsHistory)
}

func (e engines) predictNoShow(req noShowRequest) appointment.Assessment {
	return appointment.Assess(req)
}

func (e engines) analyzeTrends(req trendRequest) (trend.Result, error) {
	return trend.Analyze(req.Samples)
}
