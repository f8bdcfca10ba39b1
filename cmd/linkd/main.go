package main

import (
	"os"
	"strings"
	"time"

	"github.com/kaimonolist/linkd/internal/bootstrap"
	"github.com/kaimonolist/linkd/internal/config"
	"github.com/kaimonolist/linkd/internal/utils/loaders"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/traefik/paerser/cli"
)

type LinkdCmdConfiguration struct {
	config.Config
	ConfigFile string `description:"Path to config file."`
}

func NewLinkdCmdConfiguration() *LinkdCmdConfiguration {
	return &LinkdCmdConfiguration{
		Config: config.Config{
			DatabasePath: "data/linkd.db",
			Server: config.ServerConfig{
				Address: "0.0.0.0",
				Port:    3000,
			},
			Tokens: config.TokenConfig{
				Issuer:                "linkd",
				LinkCodeTTLMinutes:    10,
				AuthCodeTTLMinutes:    5,
				AccessTokenTTLSeconds: 3600,
				RefreshTokenTTLDays:   30,
				InviteTTLDays:         30,
			},
			Cleanup: config.CleanupConfig{
				IntervalMinutes:     1440,
				GraceMinutes:        5,
				InviteRetentionDays: 30,
			},
			Log: config.LogConfig{
				Level: "info",
			},
		},
		ConfigFile: "",
	}
}

func main() {
	lConfig := NewLinkdCmdConfiguration()

	resourceLoaders := []cli.ResourceLoader{
		&loaders.EnvLoader{},
		&loaders.FlagLoader{},
	}

	cmdLinkd := &cli.Command{
		Name:          "linkd",
		Description:   "Account linking and token lifecycle for the shared shopping list.",
		Configuration: lConfig,
		Resources:     resourceLoaders,
		Run: func(_ []string) error {
			return runCmd(&lConfig.Config)
		},
	}

	err := cmdLinkd.AddCommand(versionCmd())

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add version command")
	}

	err = cmdLinkd.AddCommand(healthcheckCmd())

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add healthcheck command")
	}

	err = cli.Execute(cmdLinkd)

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to execute command")
	}
}

func runCmd(cfg *config.Config) error {
	logLevel, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))

	if err != nil {
		log.Error().Err(err).Msg("Invalid or missing log level, defaulting to info")
	} else {
		zerolog.SetGlobalLevel(logLevel)
	}

	if !cfg.Log.JSON {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()
	}

	log.Info().Str("version", config.Version).Msg("Starting linkd")

	app := bootstrap.NewBootstrapApp(*cfg)
	return app.Setup()
}
