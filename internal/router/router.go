package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskboard/api/handler"
)

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware Middleware) *router.Router {
	r := router.New()
	r.RedirectTrailingSlash = false

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api")

	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)
	api.POST("/auth/google", handlers.Auth.Google)
	api.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))

	api.GET("/users/me", authMiddleware(handlers.Profile.GetProfile))
	api.PUT("/users/me", authMiddleware(handlers.Profile.UpdateProfile))
	api.PUT("/users/password", authMiddleware(handlers.Auth.ChangePassword))

	api.GET("/tasks", authMiddleware(handlers.Task.GetTasks))
	api.POST("/tasks", authMiddleware(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	api.PUT("/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	api.POST("/tasks/{id}/subtasks", authMiddleware(handlers.Task.AddSubtask))
	api.PUT("/tasks/{id}/subtasks/{subId}", authMiddleware(handlers.Task.UpdateSubtask))
	api.DELETE("/tasks/{id}/subtasks/{subId}", authMiddleware(handlers.Task.DeleteSubtask))

	return r
}

// Chain wraps h with the middlewares; the first one runs outermost.
func Chain(h fasthttp.RequestHandler, middlewares ...Middleware) fasthttp.RequestHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
