package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aslbekmam/flower-salon/internal/catalog"
	"github.com/aslbekmam/flower-salon/internal/directory"
	"github.com/aslbekmam/flower-salon/internal/events"
	"github.com/aslbekmam/flower-salon/internal/httpapi"
	"github.com/aslbekmam/flower-salon/internal/orders"
	"github.com/aslbekmam/flower-salon/internal/postgres"
	"github.com/aslbekmam/flower-salon/internal/ws"
	"github.com/aslbekmam/flower-salon/pkg/models"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	port := getEnv("PORT", "8080")
	store := getEnv("STORE", "postgres")
	kafkaBrokers := getEnv("KAFKA_BROKERS", "")

	var (
		repo orders.Repository
		cat  interface {
			orders.Catalog
			httpapi.Catalog
		}
		dir interface {
			orders.Directory
			httpapi.Directory
		}
		dbAuth directory.Authenticator
	)

	switch store {
	case "memory":
		logger.Info("Using in-memory stores")
		memCat, memDir := seedMemory()
		repo, cat, dir = orders.NewMemoryRepository(), memCat, memDir
	case "postgres":
		db, err := openDatabase(logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			cancel()
			logger.WithError(err).Fatal("Failed to create tables")
		}
		if err := postgres.SeedDemo(ctx, db); err != nil {
			cancel()
			logger.WithError(err).Fatal("Failed to seed demo data")
		}
		cancel()

		pgDir := directory.NewPostgresDirectory(db)
		repo, cat, dir = orders.NewPostgresRepository(db), catalog.NewPostgresStore(db), pgDir
		dbAuth = pgDir
	default:
		logger.WithField("store", store).Fatal("Unknown STORE, want postgres or memory")
	}

	auth := directory.ChainAuthenticator{demoAccounts()}
	if dbAuth != nil {
		auth = append(auth, dbAuth)
	}

	feed := ws.NewFeed(logger)
	notifiers := []orders.Notifier{feed}

	if kafkaBrokers != "" {
		producer, err := events.NewKafkaProducer(strings.Split(kafkaBrokers, ","), logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
		notifiers = append(notifiers, producer)
		logger.WithField("brokers", kafkaBrokers).Info("Kafka event publishing enabled")
	}

	svc := orders.NewService(repo, cat, dir, logger, notifiers...)
	server := httpapi.NewServer(svc, cat, dir, auth, feed, logger)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", port).Info("Starting flower salon service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}

func openDatabase(logger *logrus.Logger) (*sql.DB, error) {
	dsn := getEnv("DATABASE_URL", "")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "flowershop"),
			getEnv("DB_PASSWORD", "flowershop"),
			getEnv("DB_NAME", "flowershop"))
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 30; i++ {
		if err := db.Ping(); err == nil {
			logger.Info("Database connection established")
			return db, nil
		}
		logger.Info("Waiting for database...")
		time.Sleep(2 * time.Second)
	}
	return nil, db.Ping()
}

// demoAccounts mirrors the seeded demo data so the service is usable
// out of the box.
func demoAccounts() *directory.StaticAuthenticator {
	auth := directory.NewStaticAuthenticator()
	auth.Register("admin", "admin", models.Actor{Role: models.RoleStaff, EmployeeID: 1})
	auth.Register("client", "client", models.Actor{Role: models.RoleCustomer, CustomerID: 1})
	auth.Register("client2", "client2", models.Actor{Role: models.RoleCustomer, CustomerID: 2})
	return auth
}

func seedMemory() (*catalog.MemoryStore, *directory.MemoryDirectory) {
	cat := catalog.NewMemoryStore()
	cat.Add(models.Product{Name: "Rose bouquet", Category: "Bouquets", UnitPrice: decimal.RequireFromString("1500.00"), Unit: "piece"})
	cat.Add(models.Product{Name: "Tulip bouquet", Category: "Bouquets", UnitPrice: decimal.RequireFromString("900.00"), Unit: "piece"})
	cat.Add(models.Product{Name: "Red rose", Category: "Single stems", UnitPrice: decimal.RequireFromString("150.00"), Unit: "stem"})
	cat.Add(models.Product{Name: "Glass vase", Category: "Accessories", UnitPrice: decimal.RequireFromString("700.00"), Unit: "piece"})

	dir := directory.NewMemoryDirectory()
	dir.AddCustomer(models.Customer{FullName: "Ivanov Ivan", Email: "ivan@example.com", Phone: "+7 900 000 00 01"})
	dir.AddCustomer(models.Customer{FullName: "Sidorova Anna", Email: "anna@example.com", Phone: "+7 900 000 00 02"})
	dir.AddEmployee(models.Employee{FullName: "Petrova Olga", Email: "olga@example.com", Position: "florist"})
	return cat, dir
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
