package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/health-tracker/backend/internal/assistant"
	"github.com/anonto42/health-tracker/backend/internal/delivery"
	"github.com/anonto42/health-tracker/backend/internal/handlers"
	"github.com/anonto42/health-tracker/backend/internal/middleware"
	"github.com/anonto42/health-tracker/backend/internal/models"
	"github.com/anonto42/health-tracker/backend/internal/notifications"
	"github.com/anonto42/health-tracker/backend/internal/reminders"
	"github.com/anonto42/health-tracker/backend/internal/repositories"
	"github.com/anonto42/health-tracker/backend/pkg/config"
	"github.com/labstack/echo/v4"
)

// SetupRoutes migrates the schema, builds repositories, the notification
// store and the reminder service, and registers every route. The returned
// service is not started yet.
func SetupRoutes(ctx context.Context, e *echo.Echo, cfg *config.Config, db *config.DB, fcm *messaging.Client) (*reminders.Service, error) {
	log := slog.Default()

	// AutoMigrate PostgreSQL models
	err := db.Postgres.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Reminder{},
		&models.Medication{},
		&models.MedicationLog{},
		&models.HealthMetric{},
		&models.Appointment{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}
	log.Info("postgres auto-migrations completed")

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	reminderRepo := repositories.NewPostgresReminderRepository(db.Postgres)
	medicationRepo := repositories.NewPostgresMedicationRepository(db.Postgres)
	metricRepo := repositories.NewPostgresHealthMetricRepository(db.Postgres)
	appointmentRepo := repositories.NewPostgresAppointmentRepository(db.Postgres)

	store, err := newNotificationStore(ctx, cfg, db, log)
	if err != nil {
		return nil, err
	}

	// A nil *messaging.Client must stay a nil interface so the channel reports disabled.
	var push delivery.PushSender
	if fcm != nil {
		push = fcm
	}
	channels := []delivery.Channel{
		delivery.NewEmailChannel(delivery.EmailSettings{
			APIKey:    cfg.Email.SendGridAPIKey,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		}, log),
		delivery.NewPushChannel(push, log),
	}

	service := reminders.NewService(reminderRepo, userRepo, store, channels, reminders.Config{
		RecoverOverdue:  cfg.Notifications.RecoverOverdue,
		DeliveryTimeout: cfg.Notifications.DeliveryTimeout,
		FireConcurrency: cfg.Notifications.FireConcurrency,
		FallbackEmail:   cfg.Email.UserEmail,
		StoreBackend:    cfg.Notifications.Store,
	}, log)

	// The assistant is optional; without a key its routes answer 503.
	var completer assistant.Completer
	if cfg.Assistant.DeepSeekAPIKey != "" {
		dc, err := assistant.NewDeepSeekCompleter(cfg.Assistant.DeepSeekAPIKey)
		if err != nil {
			log.Warn("health assistant disabled", "error", err)
		} else {
			completer = dc
		}
	} else {
		log.Warn("DEEPSEEK_API_KEY not set, health assistant disabled")
	}
	healthAssistant := assistant.NewService(completer, cfg.Assistant.Model, log)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Health Tracker API"})
	})

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.JWTTokenTTL).RegisterAuthRoutes(authGroup)
	e.GET("/api/v1/health", handlers.HealthCheck)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	handlers.NewUserHandler(userRepo, reminderRepo, service).RegisterUserRoutes(api)
	handlers.NewReminderHandler(reminderRepo, service).RegisterReminderRoutes(api)
	handlers.NewNotificationHandler(service).RegisterNotificationRoutes(api)
	handlers.NewMedicationHandler(medicationRepo).RegisterMedicationRoutes(api)
	handlers.NewHealthMetricHandler(metricRepo).RegisterHealthMetricRoutes(api)
	handlers.NewAppointmentHandler(appointmentRepo).RegisterAppointmentRoutes(api)
	handlers.NewAssistantHandler(healthAssistant).RegisterAssistantRoutes(api)

	log.Info("routes configured", "notification_store", cfg.Notifications.Store)
	return service, nil
}

func newNotificationStore(ctx context.Context, cfg *config.Config, db *config.DB, log *slog.Logger) (notifications.Store, error) {
	capacity := cfg.Notifications.Capacity

	switch cfg.Notifications.Store {
	case config.StorePostgres:
		store := notifications.NewGormStore(db.Postgres, capacity)
		if err := store.Migrate(); err != nil {
			return nil, fmt.Errorf("migrate notifications table: %w", err)
		}
		return store, nil
	case config.StoreMongo:
		if db.Mongo == nil {
			return nil, fmt.Errorf("notification store %q needs MONGO_URI", config.StoreMongo)
		}
		store := notifications.NewMongoStore(db.Mongo, cfg.MongoDatabase, capacity)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure notification indexes: %w", err)
		}
		return store, nil
	default:
		store, err := notifications.NewFileStore(cfg.Notifications.FilePath, capacity, log)
		if err != nil {
			return nil, fmt.Errorf("open notification file: %w", err)
		}
		return store, nil
	}
}
