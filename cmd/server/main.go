package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/MedSync-Fiap/notificacao-api/internal/config"
	"github.com/MedSync-Fiap/notificacao-api/internal/directory"
	"github.com/MedSync-Fiap/notificacao-api/internal/dispatcher"
	"github.com/MedSync-Fiap/notificacao-api/internal/handlers"
	"github.com/MedSync-Fiap/notificacao-api/internal/logger"
	"github.com/MedSync-Fiap/notificacao-api/internal/mailer"
	"github.com/MedSync-Fiap/notificacao-api/internal/processor"
	"github.com/MedSync-Fiap/notificacao-api/internal/rabbitmq"
	"github.com/MedSync-Fiap/notificacao-api/internal/routes"
)

func main() {
	if err := logger.Init(os.Getenv("LOG_LEVEL")); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	rmq := rabbitmq.NewConnection(&cfg.RabbitMQ, logger.Logger)
	if err := rmq.Connect(); err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rmq.Close()

	directoryClient := directory.NewClient(&cfg.Directory, logger.Logger)

	smtpSender := mailer.NewSMTPSender(cfg.Email)
	deliveryEngine := mailer.NewEngine(cfg.Email, smtpSender, logger.Logger)
	defer deliveryEngine.Close()

	proc := processor.New(
		cfg.Outbound,
		cfg.Clinica,
		rmq,
		directoryClient,
		deliveryEngine,
		logger.Logger,
	)

	disp := dispatcher.NewDispatcher(&cfg.Consumer, rmq, proc, logger.Logger)
	if err := disp.Start(); err != nil {
		logger.Fatal("Failed to start dispatcher", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "Notificacao API",
		ServerHeader: "Fiber",
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	healthHandler := handlers.NewHealthHandler(rmq)
	notificationsHandler := handlers.NewNotificationsHandler(disp, logger.Logger)
	routes.SetupRoutes(app, healthHandler, notificationsHandler)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	if err := disp.Stop(); err != nil {
		logger.Error("Error stopping dispatcher", zap.Error(err))
	}

	deliveryEngine.Close()
	deliveryEngine.Wait()

	logger.Info("Server stopped")
}
