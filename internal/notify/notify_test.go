package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/taskboard/usecase/board"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Notify(board.Notification{Title: "Task Moved", Description: "x moved to Done"})
	c.Notify(board.Notification{Title: "Error", Description: "boom", Variant: board.VariantDestructive})

	assert.Equal(t, "* Task Moved: x moved to Done\n! Error: boom\n", buf.String())
}

func TestLogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLog(zap.New(core))

	l.Notify(board.Notification{Title: "Task Created"})
	l.Notify(board.Notification{Title: "Error", Variant: board.VariantDestructive})

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "Error", entries[1].ContextMap()["title"])
	}
}

func TestFanout(t *testing.T) {
	var a, b bytes.Buffer
	f := Fanout{NewConsole(&a), nil, NewConsole(&b)}

	f.Notify(board.Notification{Title: "T", Description: "d"})

	assert.Equal(t, a.String(), b.String())
	assert.NotEmpty(t, a.String())
}

func TestDeferred(t *testing.T) {
	var buf bytes.Buffer
	d := NewDeferred(NewConsole(&buf))

	d.Notify(board.Notification{Title: "Task Created", Description: "ok"})
	d.Notify(board.Notification{Title: "Error", Description: "boom", Variant: board.VariantDestructive})
	assert.Equal(t, "! Error: boom\n", buf.String())

	d.Flush()
	assert.Equal(t, "! Error: boom\n* Task Created: ok\n", buf.String())

	buf.Reset()
	d.Notify(board.Notification{Title: "Task Created"})
	d.Discard()
	d.Flush()
	assert.Empty(t, buf.String())
}
