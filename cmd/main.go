package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"ngomaBack/internal/config"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	cfg := config.LoadConfig()

	port := os.Getenv("PORT")
	if port == "" {
		port = ":4000"
	} else {
		port = ":" + port
	}
	if cfg.Server.Address != "" {
		port = cfg.Server.Address
	}

	addr := flag.String("addr", port, "HTTP network address")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)

	app, cleanup, err := initializeApp(context.Background(), cfg, errorLog, infoLog)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer cleanup()

	origins := cfg.CORS.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})

	srv := &http.Server{
		Addr:        *addr,
		ErrorLog:    errorLog,
		Handler:     c.Handler(app.routes()),
		IdleTimeout: time.Minute,
		ReadTimeout: 5 * time.Second,
		// Verify calls wait on the payment provider, which can take
		// most of the gateway client's 20s timeout.
		WriteTimeout: 30 * time.Second,
	}

	infoLog.Printf("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil {
		errorLog.Fatal(err)
	}
}
