package main

import (
	"DocVault/internal/config"
	"DocVault/internal/handlers"
	"DocVault/internal/middleware"
	"DocVault/internal/repo"
	"DocVault/internal/service"
	"net/http"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	blobsBackend, err := repo.NewFilesystemBlobsBackend(cfg.BlobsPath, cfg.BlobQuotaBytes)
	if err != nil {
		sugar.Fatalw("failed to initialize blobs backend", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	userService := service.NewUserService(userRepo)

	documentRepo := repo.NewDocumentRepository(gormDB)
	documentService := service.NewDocumentService(documentRepo)

	h := handlers.NewHandler(userService, documentService, blobsBackend, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"BlobsPath", cfg.BlobsPath,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
