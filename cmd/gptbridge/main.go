// Command gptbridge runs batches of prompts through an external completion tool.
//
//	@title			gptbridge API
//	@version		1.0
//	@description	Batch completions backed by an external command-line tool.
//	@BasePath		/
package main

import (
	"context"
	"os"

	"gptbridge/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
