package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/seth-ellison/express-blackjack/internal/config"
	"github.com/seth-ellison/express-blackjack/internal/network/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("config load failed, using defaults: %v", err)
		cfg = config.Default()
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("shutting down...")
		srv.Shutdown()
		os.Exit(0)
	}()

	log.Println("🃏 blackjack server starting...")
	if err := srv.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
