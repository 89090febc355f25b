package board

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a short user-facing message raised by a board action.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier delivers notifications to whoever renders the board.
type Notifier interface {
	Notify(Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
