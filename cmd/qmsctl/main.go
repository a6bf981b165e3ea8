package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/qbacademy/qmscore/internal/cli"
)

func main() {
	// Optional .env next to the binary; real env vars win.
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
