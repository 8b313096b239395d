// Command itemcat maintains the item catalog of the companion app.
package main

import (
	"os"

	"github.com/roach88/itemcat/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
