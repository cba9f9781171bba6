package main

import (
	"github.com/autopeer-io/scootshare/cmd/scoot-vehicle/app"
)

func main() {
	app.NewApp().Run()
}
