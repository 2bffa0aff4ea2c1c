package main

import (
	"os"

	"github.com/uancamilo/asistentelegal-sub001/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
