package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"order-management-service/handlers"
	"order-management-service/internal/auth"
	"order-management-service/internal/consul"
	"order-management-service/internal/customers"
	"order-management-service/internal/orders"
	"order-management-service/internal/products"
	"order-management-service/internal/stores/kafka"
	"order-management-service/internal/stores/postgres"
	"order-management-service/internal/users"
	"order-management-service/pkg/logkey"

	"github.com/joho/godotenv"
)

const serviceName = "order-management-service"

func main() {
	setupSlog()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	if err := startApp(); err != nil {
		slog.Error("service stopped", slog.String(logkey.Error, err.Error()))
		os.Exit(1)
	}
}

func setupSlog() {
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	})
	slog.SetDefault(slog.New(logHandler))
}

func startApp() error {
	db, err := postgres.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}
	slog.Info("migrations applied")

	keys, err := auth.NewKeysFromFiles(
		envOr("JWT_PRIVATE_KEY_PATH", "private.pem"),
		envOr("JWT_PUBLIC_KEY_PATH", "pubkey.pem"),
	)
	if err != nil {
		return err
	}

	p, err := products.NewConf(db)
	if err != nil {
		return err
	}
	o, err := orders.NewConf(db)
	if err != nil {
		return err
	}
	cst, err := customers.NewConf(db)
	if err != nil {
		return err
	}
	u, err := users.NewConf(db)
	if err != nil {
		return err
	}

	// The event producer is optional. Without a broker the service runs fine,
	// it just emits no order events.
	var k *kafka.Conf
	if host := os.Getenv("KAFKA_HOST"); host != "" {
		k, err = kafka.NewConf(host)
		if err != nil {
			return err
		}
		defer k.Close()
		slog.Info("kafka producer connected", slog.String("host", host))
	}

	port, err := strconv.Atoi(envOr("APP_PORT", "8080"))
	if err != nil {
		return err
	}

	if os.Getenv("CONSUL_HTTP_ADDR") != "" {
		client, err := consul.NewClient()
		if err != nil {
			return err
		}
		host := envOr("SERVICE_HOST", "localhost")
		if err := consul.RegisterService(client, serviceName, host, port); err != nil {
			return err
		}
		slog.Info("registered with consul", slog.String("service", serviceName))
	}

	api := http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      handlers.API(p, o, cst, u, k, keys),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("addr", api.Addr))
		serverErrors <- api.ListenAndServe()
	}()

	shutdown, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-shutdown.Done():
		slog.Info("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			if er := api.Close(); er != nil {
				return er
			}
			return err
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
