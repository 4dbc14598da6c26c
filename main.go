package main

import (
	"os"

	"scribblehub-to-epub/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
