package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Arsalank7862/caffeine-chronicles/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(services.ExitCode(err))
	}
}
