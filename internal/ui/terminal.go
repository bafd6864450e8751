package ui

import (
	"io"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// NewLogger returns a diagnostics logger writing to w.
func NewLogger(w io.Writer, level slog.Level) log.Logger {
	return log.NewLogger(log.NewTerminalHandlerWithLevel(w, level, IsTerminal(w)))
}
