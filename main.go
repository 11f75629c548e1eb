package main

import (
	"os"

	"github.com/smazurov/ffmcast/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
