// main is the entry point for the repolens CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/repolens/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; flags and env still apply
	_ = godotenv.Load()

	err := cmd.Execute()
	if shutdownErr := cmd.Shutdown(); shutdownErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", shutdownErr)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
