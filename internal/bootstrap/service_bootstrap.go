package bootstrap

import (
	"time"

	"github.com/kaimonolist/linkd/internal/service"
	"github.com/kaimonolist/linkd/internal/utils"
)

type Services struct {
	databaseService *service.DatabaseService
	authService     *service.AuthService
	listService     *service.ListService
	linkService     *service.LinkService
	tokenService    *service.TokenService
	recoveryService *service.RecoveryService
	inviteService   *service.InviteService
	cleanupService  *service.CleanupService
}

func (app *BootstrapApp) initServices() (Services, error) {
	services := Services{}

	databaseService := service.NewDatabaseService(service.DatabaseServiceConfig{
		DatabasePath: app.config.DatabasePath,
	})

	err := databaseService.Init()

	if err != nil {
		return Services{}, err
	}

	services.databaseService = databaseService

	database := databaseService.GetDatabase()

	services.authService = service.NewAuthService(service.AuthServiceConfig{
		IdentitySecret: app.config.Identity.Secret,
	})

	services.listService = service.NewListService(database)

	services.linkService = service.NewLinkService(service.LinkServiceConfig{
		LinkCodeTTL: time.Duration(app.config.Tokens.LinkCodeTTLMinutes) * time.Minute,
		AuthCodeTTL: time.Duration(app.config.Tokens.AuthCodeTTLMinutes) * time.Minute,
	}, database, services.listService)

	clientSecret := utils.GetSecret(app.config.Client.Secret, app.config.Client.SecretFile)

	services.tokenService = service.NewTokenService(service.TokenServiceConfig{
		Issuer:          app.config.Tokens.Issuer,
		ClientID:        app.config.Client.ID,
		ClientSecret:    clientSecret,
		AccessTokenTTL:  time.Duration(app.config.Tokens.AccessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(app.config.Tokens.RefreshTokenTTLDays) * 24 * time.Hour,
	}, database)

	services.recoveryService = service.NewRecoveryService(database, services.listService)

	services.inviteService = service.NewInviteService(service.InviteServiceConfig{
		InviteTTL: time.Duration(app.config.Tokens.InviteTTLDays) * 24 * time.Hour,
	}, database, services.listService)

	services.cleanupService = service.NewCleanupService(service.CleanupServiceConfig{
		Grace:           time.Duration(app.config.Cleanup.GraceMinutes) * time.Minute,
		InviteRetention: time.Duration(app.config.Cleanup.InviteRetentionDays) * 24 * time.Hour,
	}, database)

	return services, nil
}
