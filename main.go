package main

import (
	"context"
	"net/http"

	"capstone-tracker/config"
	"capstone-tracker/handlers"
	"capstone-tracker/helper"
	"capstone-tracker/middleware"
	"capstone-tracker/repositories"
	"capstone-tracker/repositories/memory"
	"capstone-tracker/services"
	"capstone-tracker/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	logFile, err := config.InitLogging(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open log file")
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize store
	var store repositories.Store
	if cfg.DBDriver == "memory" {
		log.Warn().Msg("using the in-memory store; data is lost on exit")
		store = memory.NewStore()
	} else {
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		if err := repositories.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		store = repositories.NewStore(db)
	}

	files, err := newFileStore(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to initialize file storage")
	}

	drafts, err := repositories.OpenDraftRepository(cfg.DraftDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open draft store")
	}
	defer drafts.Close()

	notifiers := []services.Notifier{services.NewStoreNotifier(store)}
	if cfg.SMTP.Enabled() {
		notifiers = append(notifiers, services.NewMailNotifier(config.NewMailer(cfg.SMTP), store))
	}
	emitter := services.NewEmitter(notifiers...)
	renderer := services.NewHTTPRenderer(cfg.RendererURL)
	maxUpload := cfg.MaxUploadMB * storage.MB

	// Initialize services
	groups := services.NewGroupPolicy(store)
	authService := services.NewAuthService(store)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Str("email", cfg.AdminEmail).Msg("failed to create admin account")
		}
	}
	projectService := services.NewProjectService(store, groups, emitter, renderer)
	approvalService := services.NewApprovalService(store, groups, emitter, nil)
	gateService := services.NewGateService(store, groups)
	defenseService := services.NewDefenseService(store, files, groups, emitter, nil, maxUpload)
	manuscriptService := services.NewManuscriptService(store, files, groups, emitter, nil, maxUpload)
	capstoneService := services.NewCapstoneService(store, files, groups, emitter, nil)
	bookmarkService := services.NewBookmarkService(store)
	notificationService := services.NewNotificationService(store)
	draftService := services.NewDraftService(store, drafts, groups, renderer, nil)

	// Initialize handlers
	h := helper.NewHTTPHelper()
	middleware.HTTPHelper = h

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.MaxMultipartMemory = 8 << 20

	handlers.RegisterRoutes(router, handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService, h),
		Project:      handlers.NewProjectHandler(projectService, approvalService, gateService, h),
		Defense:      handlers.NewDefenseHandler(defenseService, h),
		Manuscript:   handlers.NewManuscriptHandler(manuscriptService, h),
		Capstone:     handlers.NewCapstoneHandler(capstoneService, bookmarkService, h),
		Notification: handlers.NewNotificationHandler(notificationService, h),
		Draft:        handlers.NewDraftHandler(draftService, h),
	})

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	switch cfg.StorageDriver {
	case "b2":
		return storage.NewB2Store(ctx, cfg.B2KeyID, cfg.B2AppKey, cfg.B2Bucket)
	default:
		return storage.NewLocalStore(cfg.UploadPath)
	}
}
