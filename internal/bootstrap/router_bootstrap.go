package bootstrap

import (
	"fmt"
	"strings"

	"github.com/kaimonolist/linkd/internal/controller"
	"github.com/kaimonolist/linkd/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (app *BootstrapApp) setupRouter() (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())

	if len(app.config.Server.TrustedProxies) > 0 {
		err := engine.SetTrustedProxies(strings.Split(app.config.Server.TrustedProxies, ","))

		if err != nil {
			return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
		}
	}

	contextMiddleware := middleware.NewContextMiddleware(app.services.authService)

	err := contextMiddleware.Init()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize context middleware: %w", err)
	}

	engine.Use(contextMiddleware.Middleware())

	zerologMiddleware := middleware.NewZerologMiddleware()

	err = zerologMiddleware.Init()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize zerolog middleware: %w", err)
	}

	engine.Use(zerologMiddleware.Middleware())

	// The OAuth surface must never be cached by intermediaries since it
	// carries one-time codes.
	noCacheMiddleware := middleware.NewNoCacheMiddleware()

	err = noCacheMiddleware.Init()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize no-cache middleware: %w", err)
	}

	oauthRouter := engine.Group("/", noCacheMiddleware.Middleware())

	oauthController := controller.NewOAuthController(oauthRouter, app.services.linkService, app.services.tokenService)

	err = oauthController.Init()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize oauth controller: %w", err)
	}

	oauthController.SetupRoutes()

	apiRouter := engine.Group("/api")

	linkController := controller.NewLinkController(controller.LinkControllerConfig{
		DefaultListID: app.config.DefaultListID,
	}, apiRouter, app.services.linkService)

	linkController.SetupRoutes()

	recoveryController := controller.NewRecoveryController(controller.RecoveryControllerConfig{
		DefaultListID: app.config.DefaultListID,
	}, apiRouter, app.services.recoveryService)

	recoveryController.SetupRoutes()

	inviteController := controller.NewInviteController(controller.InviteControllerConfig{
		DefaultListID: app.config.DefaultListID,
	}, apiRouter, app.services.inviteService)

	inviteController.SetupRoutes()

	maintenanceController := controller.NewMaintenanceController(controller.MaintenanceControllerConfig{
		MaintenanceSecret: app.config.Cleanup.MaintenanceSecret,
	}, apiRouter, app.services.cleanupService)

	maintenanceController.SetupRoutes()

	assistantRouter := engine.Group("/assistant")

	assistantController := controller.NewAssistantController(assistantRouter, app.services.listService)

	assistantController.SetupRoutes()

	healthController := controller.NewHealthController(apiRouter)

	healthController.SetupRoutes()

	return engine, nil
}
