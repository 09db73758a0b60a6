package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMedicationRepo struct {
	medications map[uint]models.Medication
	logs        []models.MedicationLog
	failWith    error
}

func (f *fakeMedicationRepo) CreateMedication(_ context.Context, m *models.Medication) error {
	if f.failWith != nil {
		return f.failWith
	}
	m.ID = uint(len(f.medications) + 1)
	f.medications[m.ID] = *m
	return nil
}

func (f *fakeMedicationRepo) GetMedicationForUser(_ context.Context, userID, id uint) (*models.Medication, error) {
	m, ok := f.medications[id]
	if !ok || m.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (f *fakeMedicationRepo) ListMedications(context.Context, uint, string) ([]models.Medication, error) {
	return nil, nil
}

func (f *fakeMedicationRepo) UpdateMedication(_ context.Context, m *models.Medication) error {
	f.medications[m.ID] = *m
	return nil
}

func (f *fakeMedicationRepo) DeleteMedication(_ context.Context, _, id uint) error {
	delete(f.medications, id)
	return nil
}

func (f *fakeMedicationRepo) CreateLog(_ context.Context, l *models.MedicationLog) error {
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeMedicationRepo) ListLogs(context.Context, uint, uint) ([]models.MedicationLog, error) {
	return f.logs, nil
}

func TestMedication_CreateDefaultsStatus(t *testing.T) {
	repo := &fakeMedicationRepo{medications: map[uint]models.Medication{}}
	e, g := newTestEcho(5)
	NewMedicationHandler(repo).RegisterMedicationRoutes(g)

	rec := do(e, http.MethodPost, "/api/v1/medications",
		`{"name":"Metformin","dosage":"500mg","frequency":"twice daily","intake_time":"08:00, 20:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "active", repo.medications[1].Status)
	assert.Equal(t, uint(5), repo.medications[1].UserID)
}

func TestMedication_LogDefaults(t *testing.T) {
	repo := &fakeMedicationRepo{medications: map[uint]models.Medication{
		1: {ID: 1, UserID: 5, Name: "Metformin"},
		2: {ID: 2, UserID: 6, Name: "Aspirin"},
	}}
	e, g := newTestEcho(5)
	NewMedicationHandler(repo).RegisterMedicationRoutes(g)

	before := time.Now().UTC()
	rec := do(e, http.MethodPost, "/api/v1/medications/1/logs", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, repo.logs, 1)
	assert.Equal(t, "taken", repo.logs[0].Status)
	assert.False(t, repo.logs[0].TakenAt.Before(before))

	rec = do(e, http.MethodPost, "/api/v1/medications/2/logs", `{"status":"skipped"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "another user's medication")

	rec = do(e, http.MethodPost, "/api/v1/medications/1/logs", `{"status":"forgotten"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMedication_StorageFailureIs500(t *testing.T) {
	repo := &fakeMedicationRepo{medications: map[uint]models.Medication{}, failWith: errors.New("connection reset")}
	e, g := newTestEcho(5)
	NewMedicationHandler(repo).RegisterMedicationRoutes(g)

	rec := do(e, http.MethodPost, "/api/v1/medications",
		`{"name":"Metformin","dosage":"500mg","frequency":"daily","intake_time":"08:00"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
