package main

import (
	"github.com/autopeer-io/scootshare/cmd/scoot-broker/app"
)

func main() {
	app.NewApp().Run()
}
