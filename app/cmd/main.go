package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"notetutor/app/server"

	"github.com/joho/godotenv"
)

func init() {
	loadEnvVariables()
}

func main() {
	s := server.NewServer(server.ConfigFromEnv())

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func loadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
}
