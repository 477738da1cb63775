package main

import (
	_ "embed"
	"os"

	"github.com/klabast/wb-services/ai-scheduler/internal/app"
	"github.com/klabast/wb-services/ai-scheduler/internal/commands"
)

//go:embed static/index.html
var indexHTML []byte

// Version information (set via ldflags during build)
var version = "dev"

func main() {
	// Make embedded files available to app package
	app.IndexHTML = indexHTML

	if err := commands.NewRootCmd(version).Execute(); err != nil {
		os.Exit(1)
	}
}
