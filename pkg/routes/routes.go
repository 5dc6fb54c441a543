package pkg

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"WorkshopNotifier/internal/config"
	"WorkshopNotifier/internal/content"
	"WorkshopNotifier/internal/delivery"
	"WorkshopNotifier/internal/event"
	"WorkshopNotifier/internal/logger"
	"WorkshopNotifier/internal/schedule"
	"WorkshopNotifier/internal/store"
	"WorkshopNotifier/pkg/middleware"
)

var NotifierModules = fx.Module("notifier",
	fx.Provide(logger.New),
	fx.Provide(NewEchoServer),
	fx.Provide(config.NewMongoConfig),
	fx.Provide(config.NewEmailConfig),
	fx.Provide(config.NewAIConfig),
	fx.Provide(config.NewChatConfig),
	fx.Provide(config.NewSchedulerConfig),
	fx.Provide(store.Open),
	fx.Provide(content.NewChain),
	fx.Provide(delivery.NewEmailProvider),
	fx.Provide(delivery.NewChatProvider),
	fx.Provide(schedule.NewService),
	fx.Provide(schedule.NewScheduler),
	fx.Provide(schedule.NewHandler),
	fx.Provide(event.NewService),
	fx.Provide(event.NewHandler),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(StartScheduler))

func NewEchoServer(lc fx.Lifecycle, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	port := ":8080"
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("server starting", zap.String("addr", port))
			go func() {
				if err := e.Start(port); err != nil && err != http.ErrServerClosed {
					log.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func RegisterRoutes(e *echo.Echo, scheduleHandler *schedule.Handler, eventHandler *event.Handler) {
	e.GET("/api/status", eventHandler.Status)
	e.GET("/api/events", eventHandler.ListEvents)
	e.POST("/api/registrations", eventHandler.CreateRegistration)

	protected := e.Group("/api", middleware.JWTMiddleware)
	protected.POST("/events", eventHandler.CreateEvent)
	protected.PUT("/events/:id", eventHandler.UpdateEvent)
	protected.GET("/registrations", eventHandler.ListRegistrations)
	protected.POST("/chat-bindings", eventHandler.CreateChatBinding)
	protected.POST("/generate-poster", eventHandler.GeneratePoster)

	protected.GET("/schedules", scheduleHandler.ListSchedules)
	protected.POST("/schedules", scheduleHandler.CreateSchedule)
	protected.PUT("/schedules/:id", scheduleHandler.UpdateSchedule)
	protected.DELETE("/schedules/:id", scheduleHandler.DeleteSchedule)
	protected.POST("/schedules/:id/run", scheduleHandler.RunSchedule)
}

func StartScheduler(s *schedule.Scheduler, lc fx.Lifecycle) {
	s.Start(lc)
}
