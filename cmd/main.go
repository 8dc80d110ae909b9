package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"

	"github.com/Abijith-abs/Library-Management/configs"
	"github.com/Abijith-abs/Library-Management/internal/daemon"
	"github.com/Abijith-abs/Library-Management/internal/db"
	"github.com/Abijith-abs/Library-Management/internal/handlers"
	"github.com/Abijith-abs/Library-Management/internal/middleware"
	"github.com/Abijith-abs/Library-Management/internal/policy"
	"github.com/Abijith-abs/Library-Management/internal/store"
	"github.com/Abijith-abs/Library-Management/internal/utils"
)

func main() {
	cfg := configs.LoadConfig()
	db.Connect(cfg.MongoURI)
	utils.InitJwtSecret(cfg.JWTSecret)

	bookColl := db.GetCollection(cfg.DBName, "books")
	userColl := db.GetCollection(cfg.DBName, "users")
	txColl := db.GetCollection(cfg.DBName, "transactions")
	auditColl := db.GetCollection(cfg.DBName, "audit_logs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.EnsureIndexes(ctx, txColl); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	auditLogger := utils.Logger{Collection: auditColl}

	engine := policy.NewEngine(
		&store.BookStore{Coll: bookColl},
		&store.UserStore{Coll: userColl},
		&store.LoanStore{Coll: txColl},
		cfg.BorrowLimit,
		cfg.LoanPeriodDays,
	)

	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.JSONMiddleware)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","message":"Library Management API is running"}`)
	}).Methods("GET")

	authHandler := handlers.NewAuthHandler(userColl, auditLogger)
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/admin", authHandler.AdminLogin).Methods("POST")

	bookHandler := handlers.NewBookHandler(bookColl, auditLogger)
	r.HandleFunc("/api/books", bookHandler.GetBooks).Methods("GET")
	r.HandleFunc("/api/books/{id}", bookHandler.GetBook).Methods("GET")

	booksAdmin := r.PathPrefix("/api/books").Subrouter()
	booksAdmin.Use(middleware.JWTAuthMiddleware, middleware.AdminOnly)
	booksAdmin.HandleFunc("", bookHandler.AddBook).Methods("POST")
	booksAdmin.HandleFunc("/{id}", bookHandler.UpdateBook).Methods("PUT")
	booksAdmin.HandleFunc("/{id}", bookHandler.DeleteBook).Methods("DELETE")

	txHandler := handlers.NewTransactionHandler(engine, auditLogger)
	txRouter := r.PathPrefix("/api/transactions").Subrouter()
	txRouter.Use(middleware.JWTAuthMiddleware)
	txRouter.HandleFunc("/borrow", txHandler.Borrow).Methods("POST")
	txRouter.HandleFunc("/return", txHandler.Return).Methods("POST")
	txRouter.HandleFunc("/history", txHandler.History).Methods("GET")
	txRouter.HandleFunc("/latefee", txHandler.LateFee).Methods("GET")

	statsHandler := handlers.StatsHandler{
		BookCol: bookColl,
		UserCol: userColl,
		TxCol:   txColl,
	}
	adminRouter := r.PathPrefix("/api/admin").Subrouter()
	adminRouter.Use(middleware.JWTAuthMiddleware, middleware.AdminOnly)
	adminRouter.HandleFunc("", statsHandler.GetStats).Methods("GET")

	exporter := daemon.LogExporter{Coll: auditColl}
	exporter.Start(ctx)

	var server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Println("Server starting on port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Println("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Printf("Failed to disconnect from MongoDB: %v", err)
	}
	log.Println("Server shut down.")
}
