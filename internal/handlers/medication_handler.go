package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// MedicationHandler handles medications and their adherence logs
type MedicationHandler struct {
	medicationRepository repositories.MedicationRepository
}

// NewMedicationHandler creates a new MedicationHandler
func NewMedicationHandler(medicationRepo repositories.MedicationRepository) *MedicationHandler {
	return &MedicationHandler{medicationRepository: medicationRepo}
}

// RegisterMedicationRoutes registers medication routes
func (h *MedicationHandler) RegisterMedicationRoutes(g *echo.Group) {
	g.GET("/medications", h.GetMedications)
	g.POST("/medications", h.CreateMedication)
	g.GET("/medications/:id", h.GetMedication)
	g.PUT("/medications/:id", h.UpdateMedication)
	g.DELETE("/medications/:id", h.DeleteMedication)
	g.GET("/medications/:id/logs", h.GetLogs)
	g.POST("/medications/:id/logs", h.CreateLog)
}

func (h *MedicationHandler) GetMedications(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	list, err := h.medicationRepository.ListMedications(c.Request().Context(), userID, c.QueryParam("status"))
	if err != nil {
		return storageError(c, err, "Medication not found")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *MedicationHandler) CreateMedication(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateMedicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	medication := &models.Medication{
		UserID:              userID,
		Name:                req.Name,
		Dosage:              req.Dosage,
		Frequency:           req.Frequency,
		IntakeTime:          req.IntakeTime,
		SpecialInstructions: req.SpecialInstructions,
		Status:              req.Status,
		Notes:               req.Notes,
	}
	if medication.Status == "" {
		medication.Status = "active"
	}

	if err := h.medicationRepository.CreateMedication(c.Request().Context(), medication); err != nil {
		return storageError(c, err, "Medication not found")
	}
	return c.JSON(http.StatusCreated, medication)
}

func (h *MedicationHandler) GetMedication(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	medication, err := h.medicationRepository.GetMedicationForUser(c.Request().Context(), userID, id)
	if err != nil {
		return storageError(c, err, "Medication not found")
	}
	return c.JSON(http.StatusOK, medication)
}

func (h *MedicationHandler) UpdateMedication(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateMedicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	medication, err := h.medicationRepository.GetMedicationForUser(ctx, userID, id)
	if err != nil {
		return storageError(c, err, "Medication not found")
	}

	if req.Name != "" {
		medication.Name = req.Name
	}
	if req.Dosage != "" {
		medication.Dosage = req.Dosage
	}
	if req.Frequency != "" {
		medication.Frequency = req.Frequency
	}
	if req.IntakeTime != "" {
		medication.IntakeTime = req.IntakeTime
	}
	if req.SpecialInstructions != "" {
		medication.SpecialInstructions = req.SpecialInstructions
	}
	if req.Status != "" {
		medication.Status = req.Status
	}
	if req.Notes != "" {
		medication.Notes = req.Notes
	}

	if err := h.medicationRepository.UpdateMedication(ctx, medication); err != nil {
		return storageError(c, err, "Medication not found")
	}
	return c.JSON(http.StatusOK, medication)
}

func (h *MedicationHandler) DeleteMedication(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.medicationRepository.DeleteMedication(c.Request().Context(), userID, id); err != nil {
		return storageError(c, err, "Medication not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Medication deleted"})
}

func (h *MedicationHandler) GetLogs(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.medicationRepository.GetMedicationForUser(ctx, userID, id); err != nil {
		return storageError(c, err, "Medication not found")
	}

	logs, err := h.medicationRepository.ListLogs(ctx, userID, id)
	if err != nil {
		return storageError(c, err, "Medication not found")
	}
	return c.JSON(http.StatusOK, logs)
}

// CreateLog records one adherence event; taken_at defaults to now
func (h *MedicationHandler) CreateLog(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateMedicationLogRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.medicationRepository.GetMedicationForUser(ctx, userID, id); err != nil {
		return storageError(c, err, "Medication not found")
	}

	entry := &models.MedicationLog{
		UserID:       userID,
		MedicationID: id,
		TakenAt:      time.Now().UTC(),
		Status:       req.Status,
		Notes:        req.Notes,
	}
	if req.TakenAt != nil {
		entry.TakenAt = req.TakenAt.UTC()
	}
	if entry.Status == "" {
		entry.Status = "taken"
	}

	if err := h.medicationRepository.CreateLog(ctx, entry); err != nil {
		return storageError(c, err, "Medication not found")
	}
	return c.JSON(http.StatusCreated, entry)
}
