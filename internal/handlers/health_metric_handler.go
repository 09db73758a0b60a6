package handlers

import (
	"net/http"
	"time"

	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// HealthMetricHandler handles recorded health measurements
type HealthMetricHandler struct {
	metricRepository repositories.HealthMetricRepository
}

func NewHealthMetricHandler(metricRepo repositories.HealthMetricRepository) *HealthMetricHandler {
	return &HealthMetricHandler{metricRepository: metricRepo}
}

func (h *HealthMetricHandler) RegisterHealthMetricRoutes(g *echo.Group) {
	g.GET("/health-metrics", h.GetMetrics)
	g.POST("/health-metrics", h.CreateMetric)
	g.GET("/health-metrics/:id", h.GetMetric)
	g.DELETE("/health-metrics/:id", h.DeleteMetric)
}

func (h *HealthMetricHandler) GetMetrics(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	list, err := h.metricRepository.ListMetrics(c.Request().Context(), userID, c.QueryParam("type"))
	if err != nil {
		return storageError(c, err, "Health metric not found")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *HealthMetricHandler) CreateMetric(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateHealthMetricRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	metric := &models.HealthMetric{
		UserID:     userID,
		MetricType: req.MetricType,
		Value:      req.Value,
		Unit:       req.Unit,
		RecordedAt: time.Now().UTC(),
		Notes:      req.Notes,
		Systolic:   req.Systolic,
		Diastolic:  req.Diastolic,
	}
	if req.RecordedAt != nil {
		metric.RecordedAt = req.RecordedAt.UTC()
	}

	if err := h.metricRepository.CreateMetric(c.Request().Context(), metric); err != nil {
		return storageError(c, err, "Health metric not found")
	}
	return c.JSON(http.StatusCreated, metric)
}

func (h *HealthMetricHandler) GetMetric(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	metric, err := h.metricRepository.GetMetricForUser(c.Request().Context(), userID, id)
	if err != nil {
		return storageError(c, err, "Health metric not found")
	}
	return c.JSON(http.StatusOK, metric)
}

func (h *HealthMetricHandler) DeleteMetric(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.metricRepository.DeleteMetric(c.Request().Context(), userID, id); err != nil {
		return storageError(c, err, "Health metric not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Health metric deleted"})
}
