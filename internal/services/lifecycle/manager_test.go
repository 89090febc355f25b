package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdown_ReverseOrderOnce(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"db", "cache", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "cache", "db"}, order)

	m.Register("late", func(context.Context) error {
		order = append(order, "late")
		return nil
	})
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestShutdown_JoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	errA := errors.New("a")
	errB := errors.New("b")
	ran := false
	m.Register("a", func(context.Context) error { return errA })
	m.Register("ok", func(context.Context) error { ran = true; return nil })
	m.Register("b", func(context.Context) error { return errB })

	err := m.Shutdown(context.Background())

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.True(t, ran)
	assert.Equal(t, err, m.Shutdown(context.Background()))
}

func TestShutdown_HooksSeeDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, m.Shutdown(context.Background()), context.DeadlineExceeded)
}

func TestListen_FollowsParent(t *testing.T) {
	m := New(time.Second, nil)
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := m.Listen(parent)
	defer stop()

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with its parent")
	}
}
