package bootstrap

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	httpecho "github.com/mohammadpnp/user-pipeline/internal/interfaces/http/echo"
	"github.com/mohammadpnp/user-pipeline/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewHTTPServer(c *Container) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit(c.Config.Import.MaxUploadSize))
	server.Use(logging.RequestLogger(c.Logger))

	httpecho.RegisterRoutes(server, httpecho.Handlers{
		Import: httpecho.NewImportHandler(c.Import),
		Users: httpecho.NewUserHandler(httpecho.UserHandlerDeps{
			GetUser:    c.GetUser,
			ListUsers:  c.ListUsers,
			CreateUser: c.CreateUser,
			DeleteUser: c.DeleteUser,
		}),
		Migration: httpecho.NewMigrationHandler(c.BulkMigrate, c.MigrateUser, c.Progress, c.Config.Migration.RecordsMaxLimit),
		Auth:      httpecho.NewAuthHandler(c.Auth, c.Config.Auth.SidCookieKey, c.Config.Auth.SessionDuration),
	})

	server.GET("/healthz", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if c.Registry != nil {
		server.GET(c.Config.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))
	}

	return server
}
