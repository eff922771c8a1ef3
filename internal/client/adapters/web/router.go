// Package web реализует браузерный интерфейс клиента на fiber.
package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notedesk/internal/client/app"
	"notedesk/internal/client/config"
	"notedesk/pkg/logger"
)

// NewApp создает fiber приложение с маршрутами интерфейса.
// Значения форм и параметров пути копируются: контроллер хранит их дольше запроса.
func NewApp(cfg *config.WebConfig, ctrl *app.Controller, gatherer prometheus.Gatherer, log *logger.Logger) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:      "notedesk",
		Immutable:    true,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	SetupRouter(server, NewHandler(ctrl, log), gatherer, log)
	return server
}

// SetupRouter настраивает маршрутизацию.
func SetupRouter(server *fiber.App, h *Handler, gatherer prometheus.Gatherer, log *logger.Logger) {
	server.Use(NewRequestIDMiddleware())
	server.Use(NewLoggerMiddleware(log))
	server.Use(NewRecoveryMiddleware(log))

	server.Get("/healthz", h.Health)
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	server.Get("/", h.Index)
	server.Post("/config", h.SubmitConfig)
	server.Post("/refresh", h.Refresh)

	server.Post("/notes", h.Save)
	notes := server.Group("/notes")
	notes.Get("/new", h.NewNote)
	notes.Get("/:id", h.OpenNote)
	notes.Post("/:id/delete", h.RequestDelete)

	server.Post("/delete/confirm", h.ConfirmDelete)
	server.Post("/delete/cancel", h.CancelDelete)
	server.Post("/password", h.ChangePassword)
	server.Post("/logout", h.RequestLogout)
	server.Post("/logout/confirm", h.ConfirmLogout)

	server.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	})
}
