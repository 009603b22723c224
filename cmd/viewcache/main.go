// Command viewcache inspects and maintains a persistent view cache.
package main

import (
	"context"
	"os"

	"github.com/jonwraymond/viewcache/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
