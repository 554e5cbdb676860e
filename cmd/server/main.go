package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pizzadesk/api/internal/backend"
	"github.com/pizzadesk/api/internal/config"
	"github.com/pizzadesk/api/internal/router"
	"github.com/pizzadesk/api/internal/session"
	"github.com/pizzadesk/api/internal/ws"
)

func main() {
	cfg := config.Load()

	client := backend.NewClient(cfg.BackendURL, cfg.HTTPTimeout)
	sessions := session.NewManager(client, cfg.TaxRate)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, client, sessions, hub)

	log.Printf("Starting server on :%s (backend: %s, tax rate: %s)", cfg.Port, cfg.BackendURL, cfg.TaxRate)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
