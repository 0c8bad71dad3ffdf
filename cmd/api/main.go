package main

import (
	"os"

	"github.com/brightnest/daycare/internal/pkg/logger"
	"github.com/brightnest/daycare/internal/server"
)

// @title Brightnest Daycare API
// @version 1.0
// @description Newsletters, announcements, events and subscriptions for daycare families and staff
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@brightnest.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token, sent as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// The package default logger is still active when setup fails
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
