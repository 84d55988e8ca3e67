package main

import (
	"os"

	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/server"

	_ "appointment-scheduler/docs" // Swagger docs
)

// @title Appointment Scheduler API
// @version 1.0
// @description Team appointment scheduling with blocking, bulk user import and reporting.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("Server:Run", "error", err)
		os.Exit(1)
	}
}
