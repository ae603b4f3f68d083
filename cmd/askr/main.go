package main

import (
	"os"

	"github.com/sprite-ai/askr/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}
