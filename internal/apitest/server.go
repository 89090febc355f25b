// Package apitest runs the whole task API over an in-memory listener, backed
// by the memory repositories. Tests on both sides of the wire use it.
package apitest

import (
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository/memory"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

// BaseURL is the API root as seen by clients of the in-memory server.
const BaseURL = "http://taskboard.test/api"

type Server struct {
	Store  *memory.Store
	Auth   *authUC.UseCase
	Tasks  *taskUC.UseCase
	Client *fasthttp.Client

	ln *fasthttputil.InmemoryListener
}

// Start serves the API until the test ends.
func Start(t testing.TB, google authUC.GoogleVerifier) *Server {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))

	store := memory.New()
	tokens := authUC.NewTokens("apitest-secret-apitest-secret-32", "taskboard", time.Hour)
	authUseCase := authUC.New(store.Users(), store.Sessions(), tokens, google, logger)
	taskUseCase := taskUC.New(store.Tasks(), store.Subtasks(), nil, logger)
	profileUseCase := profileUC.New(store.Users(), nil, logger)

	adapter := httpcontext.NewAdapter(2 * time.Second)
	mon := monitor.New(nil, time.Minute, logger)
	mon.Refresh()

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, adapter, logger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, adapter, logger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, adapter, logger),
		Health:  apiHandler.NewHealthHandler(mon, adapter, logger),
	}
	r := router.New(handlers, middleware.JWTAuth(authUseCase, time.Second, logger))

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: router.Chain(r.Handler, middleware.AccessLog(logger))}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() {
		_ = server.Shutdown()
		_ = ln.Close()
	})

	return &Server{
		Store:  store,
		Auth:   authUseCase,
		Tasks:  taskUseCase,
		Client: &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }},
		ln:     ln,
	}
}
