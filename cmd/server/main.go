package main

import (
	"log"
	"net/http"
	"os"

	"memeclash/internal/config"
	"memeclash/internal/db"
	"memeclash/internal/gateway"
	"memeclash/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Printf("database connection failed, running without persistence: %v", err)
	}
	if conn != nil {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
	}

	srv := server.New(gateway.New(conn, &gateway.StubMinter{}), cfg)

	sched, err := srv.StartScheduler()
	if err != nil {
		log.Fatalf("scheduler setup failed: %v", err)
	}
	defer func() { _ = sched.Shutdown() }()

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Printf("memeclash server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
