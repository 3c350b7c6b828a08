/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fire-safety compliance server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize the SQLite store
  3. Build the interval policy (built-in rules, optional JSON override file)
  4. Create the API handler and router
  5. Start the server with graceful shutdown

CONFIGURATION:
  -port / PORT          HTTP server port (default 8080)
  -db / DB_PATH         SQLite database path (default firesafety.db,
                        ":memory:" for in-memory)
  -policy / POLICY_FILE optional JSON interval-policy override file
  Flags win over environment variables.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait for active requests
  (30s timeout), close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/adeelfeb/dmfiresafety-sub000/api"
	"github.com/adeelfeb/dmfiresafety-sub000/compliance"
	"github.com/adeelfeb/dmfiresafety-sub000/factory"
	"github.com/adeelfeb/dmfiresafety-sub000/store/sqlite"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// .env is optional; flags override env.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "firesafety.db"), "SQLite database path")
	policyFile := flag.String("policy", envStr("POLICY_FILE", ""), "interval policy override JSON file")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	var policy compliance.IntervalPolicy = compliance.DefaultIntervalPolicy{}
	if *policyFile != "" {
		raw, err := os.ReadFile(*policyFile)
		if err != nil {
			log.WithError(err).Fatal("failed to read policy file")
		}
		override, err := factory.ParseIntervalPolicy(string(raw))
		if err != nil {
			log.WithError(err).Fatal("invalid policy file")
		}
		policy = override
		log.WithField("policy", override.Name).Info("loaded interval policy override")
	}

	handler, err := api.NewHandler(context.Background(), store, policy, log)
	if err != nil {
		log.WithError(err).Fatal("failed to load state")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
