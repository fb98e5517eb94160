package main

import (
	"os"

	"scheme-eligibility-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
