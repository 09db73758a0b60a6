package handlers

import (
	"net/http"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// AppointmentHandler handles medical appointments
type AppointmentHandler struct {
	appointmentRepository repositories.AppointmentRepository
}

func NewAppointmentHandler(appointmentRepo repositories.AppointmentRepository) *AppointmentHandler {
	return &AppointmentHandler{appointmentRepository: appointmentRepo}
}

func (h *AppointmentHandler) RegisterAppointmentRoutes(g *echo.Group) {
	g.GET("/appointments", h.GetAppointments)
	g.POST("/appointments", h.CreateAppointment)
	g.GET("/appointments/:id", h.GetAppointment)
	g.PUT("/appointments/:id", h.UpdateAppointment)
	g.DELETE("/appointments/:id", h.DeleteAppointment)
}

// GetAppointments lists appointments in schedule order, filtered by ?status=
func (h *AppointmentHandler) GetAppointments(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	list, err := h.appointmentRepository.ListAppointments(c.Request().Context(), userID, c.QueryParam("status"))
	if err != nil {
		return storageError(c, err, "Appointment not found")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AppointmentHandler) CreateAppointment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	appointment := &models.Appointment{
		UserID:       userID,
		Title:        req.Title,
		DoctorName:   req.DoctorName,
		HospitalName: req.HospitalName,
		ScheduledAt:  req.ScheduledAt.UTC(),
		Location:     req.Location,
		Notes:        req.Notes,
		Status:       req.Status,
	}
	if appointment.Status == "" {
		appointment.Status = "scheduled"
	}

	if err := h.appointmentRepository.CreateAppointment(c.Request().Context(), appointment); err != nil {
		return storageError(c, err, "Appointment not found")
	}
	return c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) GetAppointment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	appointment, err := h.appointmentRepository.GetAppointmentForUser(c.Request().Context(), userID, id)
	if err != nil {
		return storageError(c, err, "Appointment not found")
	}
	return c.JSON(http.StatusOK, appointment)
}

func (h *AppointmentHandler) UpdateAppointment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	appointment, err := h.appointmentRepository.GetAppointmentForUser(ctx, userID, id)
	if err != nil {
		return storageError(c, err, "Appointment not found")
	}

	if req.Title != "" {
		appointment.Title = req.Title
	}
	if req.DoctorName != "" {
		appointment.DoctorName = req.DoctorName
	}
	if req.HospitalName != "" {
		appointment.HospitalName = req.HospitalName
	}
	if req.ScheduledAt != nil {
		appointment.ScheduledAt = req.ScheduledAt.UTC()
	}
	if req.Location != "" {
		appointment.Location = req.Location
	}
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}
	if req.Status != "" {
		appointment.Status = req.Status
	}

	if err := h.appointmentRepository.UpdateAppointment(ctx, appointment); err != nil {
		return storageError(c, err, "Appointment not found")
	}
	return c.JSON(http.StatusOK, appointment)
}

func (h *AppointmentHandler) DeleteAppointment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.appointmentRepository.DeleteAppointment(c.Request().Context(), userID, id); err != nil {
		return storageError(c, err, "Appointment not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Appointment deleted"})
}
