package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/beanstock-api/internal/application/admin"
	"github.com/jhoicas/beanstock-api/internal/application/auth"
	"github.com/jhoicas/beanstock-api/internal/application/stock"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/beanstock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/beanstock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/beanstock-api/internal/interfaces/http"
	"github.com/jhoicas/beanstock-api/pkg/config"
	"github.com/jhoicas/beanstock-api/pkg/logger"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

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
		Msg("iniciando aplicación")

	// Sentry solo si hay DSN
	sentryOn := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.App.Env,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			log.Error().Err(err).Msg("inicializar Sentry")
		} else {
			sentryOn = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		log.Info().Msg("esquema aplicado")
	}

	// Limitador de intentos de login (requiere Redis)
	var limiter auth.AttemptLimiter
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	if rdb != nil {
		defer rdb.Close()
		limiter = cache.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, time.Duration(cfg.Login.WindowSeconds)*time.Second)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: login sin límite de intentos")
	}

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	stockRepo := postgres.NewStockConditionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	v := validator.New()
	guard := authz.NewGuard(cfg.Bootstrap.AdminID)

	registrar := auth.NewFarmerRegistrar(userRepo, txRunner, v)
	authUC := auth.NewAuthUseCase(userRepo, tokenRepo, registrar, limiter, v, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	stockUC := stock.NewStockUseCase(stockRepo, userRepo, guard, v, log)
	adminUC := admin.NewAdminUseCase(userRepo, roleRepo, txRunner, registrar, guard, v, log)
	reportUC := stock.NewReportUseCase(stockUC, infrapdf.NewMarotoReportGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	if sentryOn {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "BeanStock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:   authUC,
		StockUC:  stockUC,
		AdminUC:  adminUC,
		ReportUC: reportUC,
		Log:      log,
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
