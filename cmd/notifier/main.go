package main

import (
	"WorkshopNotifier/internal/bootstrap"
	pkg "WorkshopNotifier/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()
	app := fx.New(
		pkg.NotifierModules,
	)

	app.Run()
}
