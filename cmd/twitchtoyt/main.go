package main

import (
	"os"

	"github.com/Toma-bot/twitchtoYt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
