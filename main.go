package main

import (
	"os"

	"github.com/ktr0731/protoir/app"
	"github.com/ktr0731/protoir/cui"
)

func main() {
	os.Exit(app.New(cui.New()).Run(os.Args[1:]))
}
