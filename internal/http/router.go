package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/userdir/internal/cache"
	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/geocoder89/userdir/internal/http/handlers"
	"github.com/geocoder89/userdir/internal/http/middlewares"
	"github.com/geocoder89/userdir/internal/mapper"
	"github.com/geocoder89/userdir/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

// Store is what the API needs from a user store.
type Store interface {
	handlers.UsersStore
	Ping(ctx context.Context) error
}

type Deps struct {
	Env    string
	Log    *slog.Logger
	Store  Store
	Mapper *mapper.Mapper
	Cache  *cache.Cache[*user.User]

	// optional
	Prom    *observability.Prom
	Metrics http.Handler

	// nil leaves write routes open
	Verifier  middlewares.TokenVerifier
	WriteRole string

	AllowedOrigins []string
	ServiceName    string

	// per client on write routes; zero means 60 per minute
	WriteLimit int
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.WriteLimit <= 0 {
		d.WriteLimit = 60
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.AllowedOrigins))

	// health
	ping := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
		defer cancel()

		return d.Store.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	usersHandler := handlers.NewUsersHandler(d.Store, d.Mapper, d.Cache, d.Prom, d.Log)

	r.GET("/users/:id", usersHandler.GetUser)

	// writes
	limiter := middlewares.NewRateLimiter(d.WriteLimit, time.Minute)

	writes := r.Group("")
	writes.Use(middlewares.RequireJSON())
	writes.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if d.Verifier != nil {
		authMw := middlewares.NewAuthMiddleware(d.Verifier)
		writes.Use(authMw.RequireAuth())
		if d.WriteRole != "" {
			writes.Use(authMw.RequireRole(d.WriteRole))
		}
	}

	writes.Use(limiter.RateLimiterMiddleware(middlewares.KeyBySubjectOrIP))

	writes.POST("/users", usersHandler.CreateUser)
	writes.POST("/users/batch", usersHandler.CreateUsers)
	writes.POST("/self", usersHandler.CreateSelf)
	writes.PATCH("/users/:id", usersHandler.PatchUser)

	return r
}
