package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/Arsalank7862/caffeine-chronicles/internal/ledger"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// colorizeStatus wraps a run status in ANSI color when writing to a
// terminal: green for published, red for failed, yellow for anything in
// between.
func colorizeStatus(status ledger.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	switch status {
	case ledger.StatusPublished:
		return ansiGreen + string(status) + ansiReset
	case ledger.StatusFailed:
		return ansiRed + string(status) + ansiReset
	default:
		return ansiYellow + string(status) + ansiReset
	}
}
