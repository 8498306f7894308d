package main

import (
	"os"

	"github.com/josephlewis42/v6sh/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
