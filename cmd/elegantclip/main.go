package main

import (
	"github.com/elegantclip/elegantclip/internal/cli"
)

// Injected at build time via -ldflags.
var (
	version   = "dev"
	buildTime = "unknown"
	commit    = "none"
)

func main() {
	cli.SetVersionInfo(version, buildTime, commit)
	cli.Execute()
}
