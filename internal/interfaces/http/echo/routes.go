package echo

import e "github.com/labstack/echo/v4"

type Handlers struct {
	Import    *ImportHandler
	Users     *UserHandler
	Migration *MigrationHandler
	Auth      *AuthHandler
}

// RegisterRoutes mounts every handler that is set.
func RegisterRoutes(server *e.Echo, h Handlers) {
	api := server.Group("/api")

	if h.Import != nil {
		api.POST("/upload", h.Import.Upload)
	}

	if h.Users != nil {
		users := api.Group("/users")
		users.GET("", h.Users.ListUsers)
		users.GET("/", h.Users.ListUsers)
		users.POST("", h.Users.CreateUser)
		users.POST("/", h.Users.CreateUser)
		users.GET("/:id", h.Users.GetUserByID)
		users.DELETE("/:id", h.Users.DeleteUser)
	}

	if h.Migration != nil {
		m := api.Group("/migration")
		m.GET("/status", h.Migration.Status)
		m.GET("/records", h.Migration.Records)
		m.POST("/bulk", h.Migration.Bulk)
		m.POST("/user/:id", h.Migration.MigrateUser)
	}

	if h.Auth != nil {
		a := api.Group("/auth")
		a.POST("/login", h.Auth.Login)
		a.GET("/check", h.Auth.Check)
		a.POST("/logout", h.Auth.Logout)
	}
}
