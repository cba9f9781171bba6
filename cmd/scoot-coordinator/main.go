package main

import (
	"github.com/autopeer-io/scootshare/cmd/scoot-coordinator/app"
)

func main() {
	app.NewApp().Run()
}
