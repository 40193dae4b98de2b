package main

import (
	"fmt"
	"os"

	"github.com/contra-labs/contrafeed-cli/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	err := cli.Execute(version)
	cli.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
