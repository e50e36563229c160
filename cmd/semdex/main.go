package main

import (
	"github.com/joho/godotenv"

	"semdex/internal/cli"
)

func main() {
	// Best effort; secrets may come from the vault or the environment.
	_ = godotenv.Load()

	cli.Execute()
}
