package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/brieflyhq/briefly/config"
	"github.com/brieflyhq/briefly/controllers"
	"github.com/brieflyhq/briefly/distiller"
	"github.com/brieflyhq/briefly/feed"
	"github.com/brieflyhq/briefly/harvester"
	"github.com/brieflyhq/briefly/pipeline"
	"github.com/brieflyhq/briefly/router"
	"github.com/brieflyhq/briefly/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	rdb, err := config.OpenRedis(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	harv := harvester.New(st, cfg)
	dist := distiller.New(st, cfg)
	pipe := pipeline.New(harv, dist)
	facade := feed.New(st)

	handler := controllers.NewHandler(facade, harv, dist, pipe, rdb)
	r := router.InitRouter(handler)

	port := cfg.App.Port
	if port == "" {
		port = ":8080"
	}
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	log.Println("Server exiting")
}
