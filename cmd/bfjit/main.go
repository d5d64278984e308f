// Command bfjit runs, compiles, dumps, and checks tape machine programs.
package main

import (
	"context"
	"os"

	"github.com/jcorbin/bfjit/internal/logio"
)

func main() {
	var log logio.Logger
	log.SetOutput(os.Stderr)

	cmd := newRootCommand(&log, os.Stdin, os.Stdout)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.ErrorIf(err)
	}
	os.Exit(log.ExitCode())
}
