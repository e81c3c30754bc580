package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"monitor/internal/app"
	"monitor/internal/handlers"
	"monitor/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	log := logger.New("main")

	application, err := app.New()
	if err != nil {
		log.Er("failed to create app", err)
		os.Exit(1)
	}

	server := fiber.New(fiber.Config{
		AppName:               "monitor",
		DisableStartupMessage: application.Config.Environment == "production",
	})

	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins:     application.Config.BaseURL,
		AllowCredentials: true,
	}))

	handlers.Router(server, application)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		log.Info("Shutting down")
		if err := server.Shutdown(); err != nil {
			log.Er("failed to stop server", err)
		}
	}()

	address := fmt.Sprintf(":%d", application.Config.ServerPort)
	log.Info("Starting server", "address", address)
	if err := server.Listen(address); err != nil {
		log.Er("server stopped", err)
	}

	if err := application.Close(); err != nil {
		log.Er("failed to close app", err)
	}
}
