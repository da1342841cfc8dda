// Command envonly rewrites JavaScript modules for the server or the client.
//
// Usage:
//
//	envonly transform [options] <input.js>...
//	cat input.js | envonly transform [options]
//	envonly check <specifier> --importer <file> [--resolved <file>] [--env <env>]
//	envonly version
//
// Config file:
//
//	envonly looks for envonly.json, envonly.yaml, envonly.yml, or
//	.envonlyrc in the input directory and its parents. Config file
//	options are overridden by ENVONLY_* environment variables, which are
//	overridden by CLI flags.
//
// Example envonly.json:
//
//	{
//	    "env": "client",
//	    "sourcemap": true,
//	    "deny": {
//	        "client": {
//	            "specifiers": ["node:*"],
//	            "files": ["**/*.server.*"]
//	        }
//	    }
//	}
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/HugoDaniel/envonly/pkg/api"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	_, _ = color.New(color.FgRed, color.Bold).Fprint(w, "error: ")
	fmt.Fprintln(w, api.ErrorMessage(err))
}
