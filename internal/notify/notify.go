package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/usecase/board"
)

// Log writes board notifications to a zap logger. Destructive ones are
// logged as warnings.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(n board.Notification) {
	fields := []zap.Field{
		zap.String("title", n.Title),
		zap.String("description", n.Description),
	}
	if n.Variant == board.VariantDestructive {
		l.logger.Warn("notification", fields...)
		return
	}
	l.logger.Info("notification", fields...)
}

// Console prints notifications as single lines for the terminal.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(n board.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := "*"
	if n.Variant == board.VariantDestructive {
		prefix = "!"
	}
	fmt.Fprintf(c.w, "%s %s: %s\n", prefix, n.Title, n.Description)
}

// Fanout delivers each notification to every notifier in order.
type Fanout []board.Notifier

func (f Fanout) Notify(n board.Notification) {
	for _, notifier := range f {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Deferred passes destructive notifications straight through and holds the
// rest until Flush. Discard drops whatever is held.
type Deferred struct {
	mu   sync.Mutex
	next board.Notifier
	held []board.Notification
}

func NewDeferred(next board.Notifier) *Deferred {
	return &Deferred{next: next}
}

func (d *Deferred) Notify(n board.Notification) {
	if n.Variant == board.VariantDestructive {
		d.next.Notify(n)
		return
	}
	d.mu.Lock()
	d.held = append(d.held, n)
	d.mu.Unlock()
}

func (d *Deferred) Flush() {
	d.mu.Lock()
	held := d.held
	d.held = nil
	d.mu.Unlock()
	for _, n := range held {
		d.next.Notify(n)
	}
}

func (d *Deferred) Discard() {
	d.mu.Lock()
	d.held = nil
	d.mu.Unlock()
}
