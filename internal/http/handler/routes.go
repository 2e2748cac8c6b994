package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"paperapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; business rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, paperSvc service.PaperService) {
	// Readiness (DB connectivity) and liveness probes
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/papers", ListPapers(paperSvc))
	api.Post("/papers", UploadPaper(paperSvc))
	api.Get("/papers/download/:id", DownloadPaper(paperSvc))
	api.Post("/papers/whatsapp", SendPaperWhatsApp(paperSvc))
}
