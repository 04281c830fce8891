package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obralink/obralink-api/internal/application/auth"
	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/application/reporting"
	"github.com/obralink/obralink-api/internal/application/usecase"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/internal/infrastructure/invoice"
	"github.com/obralink/obralink-api/internal/infrastructure/memory"
	infrapdf "github.com/obralink/obralink-api/internal/infrastructure/pdf"
	"github.com/obralink/obralink-api/internal/infrastructure/postgres"
	httpRouter "github.com/obralink/obralink-api/internal/interfaces/http"
	"github.com/obralink/obralink-api/pkg/config"
	"github.com/obralink/obralink-api/pkg/logger"
	"github.com/obralink/obralink-api/pkg/metrics"
)

// storage repositorios del driver elegido (postgres o memory).
type storage struct {
	tx        inventory.TxRunner
	products  repository.ProductRepository
	movements repository.MovementRepository
	sites     repository.SiteRepository
	reports   repository.ReportRepository
	users     repository.UserRepository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.New()
		return &storage{
			tx:        store,
			products:  store.Products(),
			movements: store.Movements(),
			sites:     store.Sites(),
			reports:   store.Reports(),
			users:     store.Users(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.MigrateUp(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &storage{
		tx:        postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		sites:     postgres.NewSiteRepository(pool),
		reports:   postgres.NewReportRepository(pool),
		users:     postgres.NewUserRepository(pool),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString() + uuid.NewString()
		log.Warn().Msg("JWT_SECRET vacío: se usa un secreto aleatorio, los tokens no sobreviven un reinicio")
	}

	ledger := inventory.NewLedgerUseCase(store.tx, store.movements, inventory.LedgerConfig{
		CentralSiteID: cfg.Ledger.CentralSiteID,
		SKUAttempts:   cfg.Ledger.SKUAttempts,
	}, ledgerMetrics, log.Named("ledger"))
	reconciler := inventory.NewReconcileUseCase(store.tx, ledger, repository.NameMatch(cfg.Ledger.NameMatch), ledgerMetrics, log.Named("ingreso"))
	productUC := usecase.NewProductUseCase(store.products, store.tx, ledger)
	siteUC := usecase.NewSiteUseCase(store.sites, store.reports, store.tx, ledger, cfg.Ledger.CentralSiteID, log.Named("obras"))
	reportUC := reporting.NewReportUseCase(store.reports, store.products, store.movements, store.sites,
		infrapdf.NewMarotoReportGenerator(cfg.App.Name), cfg.Ledger.CriticalThreshold)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     jwtSecret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
			log.Fatal().Err(err).Msg("asegurar usuario administrador")
		}
		log.Info().Str("email", cfg.Admin.Email).Msg("usuario administrador asegurado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    12 << 20,
		ErrorHandler: httpRouter.ErrorHandler(log.Named("http")),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.TrimSpace(cfg.HTTP.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-Id",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ObraLink API",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     productUC,
		SiteUC:        siteUC,
		Ledger:        ledger,
		Reconciler:    reconciler,
		InvoiceParser: invoice.NewParser(),
		ReportUC:      reportUC,
		AuthUC:        authUC,
		Log:           log,
		HTTPMetrics:   httpMetrics,
		ServiceName:   cfg.App.Name,
		JWTSecret:     jwtSecret,
		RequireAuth:   cfg.HTTP.RequireAuth,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
