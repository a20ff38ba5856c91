package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"financial-app/internal/auth"
	"financial-app/internal/models"
	"financial-app/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDContextKey is the gin context key for the authenticated user ID.
	UserIDContextKey = "userID"
	// MinPasswordLength is the shortest password sign-up accepts.
	MinPasswordLength = 6
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db     *storage.DB
	tokens *auth.Tokens
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, tokens *auth.Tokens) *Handlers {
	return &Handlers{db: db, tokens: tokens}
}

// UserID returns the authenticated user ID set by AuthMiddleware.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(UserIDContextKey)
}

// AuthMiddleware rejects requests without a valid bearer token.
func (h *Handlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, auth.TokenType) || token == "" {
			unauthorized(c)
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			unauthorized(c)
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.String(http.StatusUnauthorized, "Unauthorized")
	c.Abort()
}

// Health reports whether the database answers.
func (h *Handlers) Health(c *gin.Context) {
	if _, err := h.db.UserCount(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "financial-backend"})
}

// Test is the connectivity probe.
func (h *Handlers) Test(c *gin.Context) {
	c.String(http.StatusOK, "Backend is running!")
}

// SignIn exchanges email and password for a token.
func (h *Handlers) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.String(http.StatusBadRequest, "Invalid email or password")
		return
	}

	user, err := h.db.GetUserByEmail(strings.TrimSpace(req.Email))
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.String(http.StatusBadRequest, "Invalid email or password")
		return
	}

	h.respondWithToken(c, user)
}

// SignUp registers a user and signs them in.
func (h *Handlers) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid sign up request")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	switch {
	case req.Username == "":
		c.String(http.StatusBadRequest, "Username is required")
		return
	case !strings.Contains(req.Email, "@"):
		c.String(http.StatusBadRequest, "A valid email is required")
		return
	case len(req.Password) < MinPasswordLength:
		c.String(http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		c.String(http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	user, err := h.db.CreateUser(req.Username, req.Email, hash, strings.TrimSpace(req.PhoneNumber))
	if errors.Is(err, storage.ErrEmailTaken) {
		c.String(http.StatusBadRequest, "User with email "+req.Email+" already exists")
		return
	}
	if err != nil {
		log.Printf("Failed to create user: %v", err)
		c.String(http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handlers) respondWithToken(c *gin.Context, user *models.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		c.String(http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	c.JSON(http.StatusOK, models.AuthResult{
		Token:       token,
		Type:        auth.TokenType,
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		PhoneNumber: user.PhoneNumber,
	})
}

// ListAccounts returns the caller's accounts.
func (h *Handlers) ListAccounts(c *gin.Context) {
	accounts, err := h.db.ListAccounts(UserID(c))
	if err != nil {
		log.Printf("ListAccounts error: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// ListTransactions returns the caller's ledger entries.
func (h *Handlers) ListTransactions(c *gin.Context) {
	txns, err := h.db.ListTransactions(UserID(c))
	if err != nil {
		log.Printf("ListTransactions error: %v", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, txns)
}

var transferMessages = map[error]string{
	storage.ErrFromAccountNotFound: "From account not found",
	storage.ErrToAccountNotFound:   "To account not found",
	storage.ErrNotOwner:            "You can only transfer from your own accounts",
	storage.ErrInvalidAmount:       "Amount must be positive",
	storage.ErrInsufficientFunds:   "Insufficient funds",
	storage.ErrSameAccount:         "Cannot transfer to the same account",
}

// Transfer moves money out of one of the caller's accounts.
func (h *Handlers) Transfer(c *gin.Context) {
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.TransferResult{Success: false, Message: "Invalid transfer request"})
		return
	}

	transfer, err := h.db.ProcessTransfer(UserID(c), req)
	if err != nil {
		for target, msg := range transferMessages {
			if errors.Is(err, target) {
				c.JSON(http.StatusBadRequest, models.TransferResult{Success: false, Message: msg})
				return
			}
		}
		log.Printf("Transfer error: %v", err)
		c.JSON(http.StatusInternalServerError, models.TransferResult{Success: false, Message: "Transfer failed"})
		return
	}

	c.JSON(http.StatusOK, models.TransferResult{
		Success:    true,
		Message:    "Transfer completed successfully",
		TransferID: transfer.ID,
	})
}

// Register mounts the API routes under group.
func (h *Handlers) Register(api *gin.RouterGroup) {
	authGroup := api.Group("/auth")
	authGroup.POST("/signin", h.SignIn)
	authGroup.POST("/signup", h.SignUp)
	authGroup.GET("/test", h.Test)

	secured := api.Group("", h.AuthMiddleware())
	secured.GET("/accounts", h.ListAccounts)
	secured.GET("/transactions", h.ListTransactions)
	secured.POST("/transfers", h.Transfer)
}
