package main

import (
	"os"

	"finchwire.dev/newsvet/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
