package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/usecase/auth"
)

type stubAuth struct {
	claims *auth.Claims
	err    error
	seen   string
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	s.seen = token
	return s.claims, s.err
}

func request(header string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/tasks")
	if header != "" {
		ctx.Request.Header.Set("Authorization", header)
	}
	return ctx
}

func TestExtractToken(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"Bearer abc":     "abc",
		"bearer   abc  ": "abc",
		"raw-token":      "raw-token",
		"Bearer":         "Bearer",
	}
	for header, want := range cases {
		assert.Equal(t, want, extractToken(request(header)), header)
	}
}

func TestJWTAuth(t *testing.T) {
	reached := false
	next := func(ctx *fasthttp.RequestCtx) {
		reached = true
		assert.Equal(t, "u1", httpcontext.UserID(ctx))
		assert.Equal(t, "s1", httpcontext.SessionID(ctx))
	}

	t.Run("missing token", func(t *testing.T) {
		reached = false
		ctx := request("")
		JWTAuth(&stubAuth{}, 0, nil)(next)(ctx)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.False(t, reached)
	})

	t.Run("rejected token", func(t *testing.T) {
		reached = false
		ctx := request("Bearer bad")
		JWTAuth(&stubAuth{err: domain.ErrUnauthorized}, 0, nil)(next)(ctx)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), "UNAUTHORIZED")
		assert.False(t, reached)
	})

	t.Run("session store down", func(t *testing.T) {
		reached = false
		ctx := request("Bearer ok")
		JWTAuth(&stubAuth{err: errors.New("redis: connection refused")}, 0, nil)(next)(ctx)
		assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
		assert.False(t, reached)
	})

	t.Run("valid token", func(t *testing.T) {
		reached = false
		stub := &stubAuth{claims: &auth.Claims{UserID: "u1", SessionID: "s1"}}
		ctx := request("Bearer good")
		JWTAuth(stub, 0, nil)(next)(ctx)
		assert.True(t, reached)
		assert.Equal(t, "good", stub.seen)
	})
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := AccessLog(zap.New(core))(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	})

	h(request(""))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.EqualValues(t, 500, entries[0].ContextMap()["status"])
	}
}
