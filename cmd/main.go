package main

import (
	"os"

	"github.com/duccv/contact-addin/config"
	"github.com/duccv/contact-addin/pkg/logger"
	"github.com/duccv/contact-addin/pkg/server"
	"go.uber.org/zap"

	_ "github.com/duccv/contact-addin/docs"
)

//	@title			CONTACT ENRICHMENT APIs
//	@version		1.0
//	@description	Contact enrichment service for the Outlook add-in.
//	@BasePath		/api
//	@contact.name	DucCV
//	@contact.email	duccv@gviet.vn

// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				JWT authorization header
func main() {
	env := config.GetEnv()

	zapLogger := logger.GetLogger(env.LoggerConfig)
	defer zapLogger.Sync()

	if err := server.StartServer(env); err != nil {
		zapLogger.Error("Server exited with error", zap.Error(err))
		_ = zapLogger.Sync()
		os.Exit(1)
	}
}
