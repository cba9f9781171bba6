package main

import (
	"github.com/autopeer-io/scootshare/cmd/scoot-terminal/app"
)

func main() {
	app.NewApp().Run()
}
