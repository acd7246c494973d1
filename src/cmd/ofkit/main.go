package main

import (
	"os"

	"github.com/api-sage/open-finance-kit/src/internal/cli"
	_ "go.uber.org/automaxprocs"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
