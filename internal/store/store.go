// Package store adapts the clinic's PostgreSQL tables into the plain records
// the decision-support engines consume, and persists their results.
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/clinicai/internal/appointment"
	"github.com/Skufu/clinicai/internal/clinic"
	"github.com/Skufu/clinicai/internal/patient"
	"github.com/Skufu/clinicai/internal/summary"
)

//go:embed schema.sql
var schema string

var ErrNotFound = errors.New("not found")

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	db Querier
}

func New(db Querier) *Store {
	return &Store{db: db}
}

// Connect opens a pool and verifies it with a bounded ping.
func Connect(ctx context.Context, url string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// PatientContext loads the engine view of an active patient. Age is whole
// years counted as elapsed days / 365.
func (s *Store) PatientContext(ctx context.Context, patientID uuid.UUID, now time.Time) (clinic.PatientContext, error) {
	var (
		birth time.Time
		p     clinic.PatientContext
	)
	err := s.db.QueryRow(ctx, `
		SELECT birth_date, gender, allergies, chronic_conditions
		FROM patients WHERE id = $1 AND is_active`, patientID,
	).Scan(&birth, &p.Gender, &p.Allergies, &p.ChronicConditions)
	if err != nil {
		return clinic.PatientContext{}, notFound(err, "load patient")
	}
	p.Age = ageAt(birth, now)
	return p, nil
}

func ageAt(birth, now time.Time) int {
	return int(now.Sub(birth).Hours() / 24 / 365)
}

// PatientProfiles lists every active patient for the practice statistics.
func (s *Store) PatientProfiles(ctx context.Context, now time.Time) ([]patient.Profile, error) {
	rows, err := s.db.Query(ctx, `
		SELECT birth_date, gender, chronic_conditions
		FROM patients WHERE is_active`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var out []patient.Profile
	for rows.Next() {
		var (
			birth time.Time
			p     patient.Profile
		)
		if err := rows.Scan(&birth, &p.Gender, &p.ChronicConditions); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		p.Age = ageAt(birth, now)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return out, nil
}

// Visits lists every appointment for the practice analytics.
func (s *Store) Visits(ctx context.Context) ([]appointment.Visit, error) {
	rows, err := s.db.Query(ctx, `
		SELECT date_time, status, duration_minutes
		FROM appointments`)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var out []appointment.Visit
	for rows.Next() {
		var (
			v      appointment.Visit
			status string
		)
		if err := rows.Scan(&v.At, &status, &v.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		v.Status = appointment.Status(status)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return out, nil
}

// VitalsHistory returns the patient's latest limit weighed records, oldest
// first. Records without a weight are skipped so the newest sample scored is
// the last weighed visit.
func (s *Store) VitalsHistory(ctx context.Context, patientID uuid.UUID, limit int) ([]clinic.VitalsSample, error) {
	rows, err := s.db.Query(ctx, `
		SELECT weight::float8, height::float8, blood_pressure_sys::float8, blood_pressure_dia::float8, created_at
		FROM medical_records WHERE patient_id = $1 AND weight IS NOT NULL
		ORDER BY created_at DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query vitals: %w", err)
	}
	defer rows.Close()

	var out []clinic.VitalsSample
	for rows.Next() {
		var v clinic.VitalsSample
		if err := rows.Scan(&v.Weight, &v.Height, &v.BloodPressureSys, &v.BloodPressureDia, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("scan vitals: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vitals: %w", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// RecordNotes returns complaints and diagnoses of the latest limit records,
// oldest first.
func (s *Store) RecordNotes(ctx context.Context, patientID uuid.UUID, limit int) ([]summary.RecordNote, error) {
	rows, err := s.db.Query(ctx, `
		SELECT created_at, complaint, diagnosis
		FROM medical_records WHERE patient_id = $1
		ORDER BY created_at DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []summary.RecordNote
	for rows.Next() {
		var n summary.RecordNote
		if err := rows.Scan(&n.Date, &n.Complaint, &n.Diagnosis); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append([]summary.RecordNote{n}, out...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// LatestRecordID is the record that receives the patient's risk score.
func (s *Store) LatestRecordID(ctx context.Context, patientID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `
		SELECT id FROM medical_records WHERE patient_id = $1
		ORDER BY created_at DESC LIMIT 1`, patientID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, notFound(err, "latest record")
	}
	return id, nil
}

// PrescribedMedications lists every medication on the record that owns the
// given prescription, so a new drug is checked against its companions.
func (s *Store) PrescribedMedications(ctx context.Context, prescriptionID uuid.UUID) ([]clinic.Medication, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.medication_name
		FROM prescriptions p
		JOIN prescriptions target ON target.medical_record_id = p.medical_record_id
		WHERE target.id = $1
		ORDER BY p.created_at`, prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("query medications: %w", err)
	}
	defer rows.Close()

	var out []clinic.Medication
	for rows.Next() {
		var m clinic.Medication
		if err := rows.Scan(&m.Name); err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medications: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("prescription %s: %w", prescriptionID, ErrNotFound)
	}
	return out, nil
}

// AppointmentFeatures derives no-show features for an appointment.
func (s *Store) AppointmentFeatures(ctx context.Context, appointmentID uuid.UUID, now time.Time) (appointment.Features, error) {
	var (
		at             time.Time
		noShows, total int
	)
	err := s.db.QueryRow(ctx, `
		SELECT a.date_time,
		       (SELECT COUNT(*) FROM appointments h WHERE h.patient_id = a.patient_id AND h.status = 'no_show'),
		       (SELECT COUNT(*) FROM appointments h WHERE h.patient_id = a.patient_id)
		FROM appointments a WHERE a.id = $1`, appointmentID,
	).Scan(&at, &noShows, &total)
	if err != nil {
		return appointment.Features{}, notFound(err, "load appointment")
	}
	return appointment.FeaturesFor(at, now, noShows, total), nil
}

func (s *Store) SaveRiskScore(ctx context.Context, recordID uuid.UUID, score int) error {
	tag, err := s.db.Exec(ctx, `UPDATE medical_records SET ai_risk_score = $2 WHERE id = $1`, recordID, score)
	if err != nil {
		return fmt.Errorf("save risk score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s: %w", recordID, ErrNotFound)
	}
	return nil
}

// SaveInteractionCheck stores any JSON-serialisable report on the prescription.
func (s *Store) SaveInteractionCheck(ctx context.Context, prescriptionID uuid.UUID, report any) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode interaction check: %w", err)
	}
	tag, err := s.db.Exec(ctx, `UPDATE prescriptions SET ai_interaction_check = $2 WHERE id = $1`, prescriptionID, body)
	if err != nil {
		return fmt.Errorf("save interaction check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("prescription %s: %w", prescriptionID, ErrNotFound)
	}
	return nil
}
