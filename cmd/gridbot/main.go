package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/rsham004/nz-electricity-chatbot/internal/cli"
)

var version = "dev"

func main() {
	log.SetOutput(os.Stderr)
	log.SetTimeFormat("2006-01-02 15:04:05")
	log.SetReportTimestamp(true)

	app := cli.NewApp(version)
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
