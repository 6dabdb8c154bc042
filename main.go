package main

import (
	"Gin_postgres_redis_booking_system/app"
	"Gin_postgres_redis_booking_system/config"
	"Gin_postgres_redis_booking_system/db"
	"Gin_postgres_redis_booking_system/routes"
	"context"
	"log"
	"os"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	app.BootstrapFirstAdmin(context.Background(), application.Config, db.NewRepo(application.DB))

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
