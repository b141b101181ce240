package main

import (
	"fmt"
	"os"

	"dayplan/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dayplan: %v\n", err)
		os.Exit(1)
	}
}
