package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/health-tracker/backend/internal/assistant"
	"github.com/labstack/echo/v4"
)

// Assistant is the chat assistant behind the chatbot routes.
type Assistant interface {
	Available() bool
	Model() string
	Chat(ctx context.Context, message string, history []assistant.Exchange) (assistant.Reply, error)
	Tips(ctx context.Context, category string) (assistant.Reply, error)
}

type chatRequest struct {
	Message             string               `json:"message" validate:"required"`
	ConversationHistory []assistant.Exchange `json:"conversation_history"`
}

// AssistantHandler handles the health assistant chat
type AssistantHandler struct {
	assistant Assistant
}

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(a Assistant) *AssistantHandler {
	return &AssistantHandler{assistant: a}
}

// RegisterAssistantRoutes registers chatbot routes
func (h *AssistantHandler) RegisterAssistantRoutes(g *echo.Group) {
	g.POST("/chatbot", h.Chat)
	g.GET("/chatbot/tips", h.Tips)
	g.GET("/chatbot/tips/:category", h.Tips)
	g.GET("/chatbot/status", h.Status)
}

func (h *AssistantHandler) Chat(c echo.Context) error {
	if _, err := requireUserID(c); err != nil {
		return err
	}

	var req chatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message cannot be empty")
	}

	reply, err := h.assistant.Chat(c.Request().Context(), req.Message, req.ConversationHistory)
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusOK, reply)
}

// Tips returns short health tips for the category in the path, general by default
func (h *AssistantHandler) Tips(c echo.Context) error {
	if _, err := requireUserID(c); err != nil {
		return err
	}

	reply, err := h.assistant.Tips(c.Request().Context(), c.Param("category"))
	if err != nil {
		return assistantError(err)
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *AssistantHandler) Status(c echo.Context) error {
	if _, err := requireUserID(c); err != nil {
		return err
	}

	available := h.assistant.Available()
	status := echo.Map{
		"available": available,
		"service":   "Health Assistant",
		"model":     nil,
		"message":   "Assistant unavailable, check DEEPSEEK_API_KEY",
	}
	if available {
		status["model"] = h.assistant.Model()
		status["message"] = "Assistant is ready"
	}
	return c.JSON(http.StatusOK, status)
}

func assistantError(err error) error {
	switch {
	case errors.Is(err, assistant.ErrInvalidCategory):
		return echo.NewHTTPError(http.StatusBadRequest,
			"Invalid category. Valid options: "+strings.Join(assistant.Categories, ", "))
	case errors.Is(err, assistant.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "The health assistant is not configured")
	default:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "The health assistant could not answer, please try again later")
	}
}
