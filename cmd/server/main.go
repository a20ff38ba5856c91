package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"financial-app/internal/auth"
	"financial-app/internal/config"
	"financial-app/internal/handlers"
	"financial-app/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// adminOpeningBalance funds the seeded admin's checking account.
var adminOpeningBalance = decimal.NewFromInt(10000)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Println("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	tokens, err := auth.NewTokens(secret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to set up tokens: %v", err)
	}

	if err := seedAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	router := setupRouter(handlers.NewHandlers(db, tokens))

	log.Printf("Server starting on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	router.GET("/health", h.Health)
	h.Register(router.Group("/api"))

	return router
}

// seedAdmin creates the admin user from ADMIN_* settings if it does not exist.
func seedAdmin(db *storage.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := db.GetUserByEmail(cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	username := cfg.AdminUser
	if username == "" {
		username = "admin"
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user, err := db.CreateUser(username, cfg.AdminEmail, hash, "")
	if err != nil {
		return err
	}
	if _, err := db.OpenStarterAccounts(user.ID, adminOpeningBalance); err != nil {
		return err
	}

	log.Printf("Seeded admin user %s (%s)", user.Username, user.Email)
	return nil
}
