package app

// Logger receives structured diagnostics from the store.
// *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
}

// Observer is called with every snapshot the store publishes.
type Observer func(Snapshot)
