package main

import (
	"os"

	"github.com/piyush-tyagi-13/meal-planner/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
