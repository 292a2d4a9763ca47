package main

import (
	_ "time/tzdata"

	"github.com/ogulcanaydogan/quartermaster/internal/cli"
)

func main() {
	cli.Execute()
}
