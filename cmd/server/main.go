package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/himanishpuri/DesertMirage/pkg/desertmirage"
	"github.com/himanishpuri/DesertMirage/pkg/logger"
)

var (
	port           int
	dbPath         string
	allowedOrigins string
	logRequests    bool
	debug          bool
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault(desertmirage.EnvPrefix+"DB_PATH", desertmirage.DefaultDBFile), "Path to SQLite result store")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.BoolVar(&logRequests, "log-requests", false, "Log every request")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(s string) []string {
	if s == "*" {
		return []string{"*"}
	}
	origins := strings.Split(s, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func main() {
	flag.Parse()
	logger.Init(debug)
	log := logger.GetLogger()
	defer log.Sync()

	store, err := desertmirage.NewSQLiteStorage(dbPath)
	if err != nil {
		log.Fatalf("Failed to open result store: %v", err)
	}
	defer store.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		AllowedOrigins: parseOrigins(allowedOrigins),
		LogRequests:    logRequests,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := NewServer(store, config)
	if err := server.Start(ctx); err != nil {
		log.Errorf("Server failed: %v", err)
		os.Exit(1)
	}
}
