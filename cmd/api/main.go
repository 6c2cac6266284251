package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"book-catalog-api/internal/app"
)

func main() {
	_ = godotenv.Load()
	fx.New(
		app.ConfigModule,
		app.Module,
		fx.WithLogger(app.FxLogger),
	).Run()
}
