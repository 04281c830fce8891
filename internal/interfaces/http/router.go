package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/obralink/obralink-api/internal/application/auth"
	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/application/reporting"
	"github.com/obralink/obralink-api/internal/application/usecase"
	"github.com/obralink/obralink-api/pkg/logger"
	"github.com/obralink/obralink-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	SiteUC        *usecase.SiteUseCase
	Ledger        *inventory.LedgerUseCase
	Reconciler    *inventory.ReconcileUseCase
	InvoiceParser inventory.InvoiceParser
	ReportUC      *reporting.ReportUseCase
	AuthUC        *auth.AuthUseCase
	Log           *logger.Logger
	HTTPMetrics   *metrics.HTTPMetrics
	ServiceName   string
	JWTSecret     string
	// RequireAuth exige Bearer en las rutas que modifican datos.
	RequireAuth bool
}

// Router registra middlewares y rutas. Las rutas viven en la raíz, como las consume el cliente web.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	app.Use(RequestID())
	app.Use(RequestLogger(log.Named("http"), deps.HTTPMetrics))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	write := OptionalAuth(deps.RequireAuth, deps.JWTSecret)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	app.Post("/login", authHandler.Login)

	// Productos
	productHandler := NewProductHandler(deps.ProductUC, log)
	products := app.Group("/productos")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", write, productHandler.Create)
	products.Put("/:id", write, productHandler.Update)
	products.Delete("/:id", write, productHandler.Delete)

	// Movimientos (ledger)
	movementHandler := NewMovementHandler(deps.Ledger, log)
	movements := app.Group("/movimientos")
	movements.Get("/", movementHandler.List)
	movements.Post("/", write, movementHandler.Record)
	movements.Delete("/:id", write, movementHandler.Delete)
	app.Post("/registrar-ingreso-completo", write, movementHandler.Ingress)

	// Obras
	siteHandler := NewSiteHandler(deps.SiteUC, log)
	sites := app.Group("/obras")
	sites.Get("/", siteHandler.List)
	sites.Get("/:id", siteHandler.GetByID)
	sites.Get("/:id/recibido", siteHandler.Received)
	sites.Post("/", write, siteHandler.Create)
	sites.Delete("/:id", write, siteHandler.Delete)

	// Facturas de proveedor
	invoiceHandler := NewInvoiceHandler(deps.InvoiceParser, deps.Reconciler, log)
	app.Post("/subir-factura", write, invoiceHandler.Upload)
	app.Post("/ingreso-masivo", write, invoiceHandler.Import)

	// Reportes
	reportHandler := NewReportHandler(deps.ReportUC, log)
	app.Get("/reportes/resumen", reportHandler.Summary)
	app.Get("/reportes/criticos", reportHandler.Critical)
	app.Get("/reporte-pdf", reportHandler.InventoryPDF)
	app.Get("/reporte-historial-pdf", reportHandler.HistoryPDF)
}
