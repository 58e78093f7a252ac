package main

import (
	"os"

	"github.com/oasforge/oasforge/cmd/oasforge/commands"
)

func main() {
	os.Exit(commands.Execute(os.Args[1:]))
}
