package router

import (
	"github.com/oksasatya/jobify/internal/application"
	"github.com/oksasatya/jobify/internal/container"
	"github.com/oksasatya/jobify/internal/domain/service"
	pginfra "github.com/oksasatya/jobify/internal/infrastructure/postgres"
	"github.com/oksasatya/jobify/internal/infrastructure/redisstore"
	"github.com/oksasatya/jobify/internal/infrastructure/search"
	"github.com/oksasatya/jobify/internal/infrastructure/storage"
	handlers "github.com/oksasatya/jobify/internal/interface/http"
	"github.com/oksasatya/jobify/internal/router/modules"
	"github.com/oksasatya/jobify/pkg/helpers"
	mailtpl "github.com/oksasatya/jobify/pkg/mailer/templates"
)

type Deps struct {
	Users    *application.UserService
	Jobs     *application.JobService
	Tokens   service.TokenIssuer
	Sessions service.SessionStore
}

// BuildDeps wires the services from the container singletons.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	jobRepo := pginfra.NewJobRepository(container.GetPGPool())
	tokens := container.GetJWT()

	var sessions service.SessionStore
	if rdb := container.GetRedis(); rdb != nil {
		sessions = redisstore.NewSessionStore(rdb)
	}

	users := application.NewUserService(userRepo, jobRepo, helpers.NewBcryptHasher(), tokens, sessions, logger)
	users.Cache = container.GetRedis()
	users.ImageMaxBytes = cfg.ImageMaxBytes
	users.Brand = mailtpl.Brand{
		AppName:        cfg.AppName,
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		AppURL:         cfg.AppURL,
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		users.Blobs = storage.NewGCSBlobStore(gcs, cfg.GCSBucket, cfg.GCSImagesPrefix)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		users.Emails = pub
	}
	if es := container.GetES(); es != nil {
		users.Index = search.NewUserIndex(es, cfg.ESUsersIndex)
	}

	return Deps{
		Users:    users,
		Jobs:     application.NewJobService(jobRepo, userRepo, logger),
		Tokens:   tokens,
		Sessions: sessions,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	RegisterModules(r, BuildDeps())
}

func RegisterModules(r *Registry, d Deps) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	r.Add(
		modules.NewAuthModule(handlers.NewAuthHandler(d.Users, logger, cookies), d.Tokens, d.Sessions),
		modules.NewUserModule(handlers.NewUserHandler(d.Users, logger), d.Tokens, d.Sessions),
		modules.NewJobModule(handlers.NewJobHandler(d.Jobs, logger), d.Tokens, d.Sessions),
		modules.NewDebugModule(),
	)
}
