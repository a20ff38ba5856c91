package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, as the backend contract expects.
	decimal.MarshalJSONWithoutQuotes = true
}

// Account represents a bank account owned by a user.
type Account struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Transaction directions.
const (
	Credit = "credit"
	Debit  = "debit"
)

// Transaction represents a ledger entry against an account.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	AccountID   int64           `json:"accountId"`
	TxnType     string          `json:"txnType"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// IsCredit reports whether the transaction adds money to its account.
func (t Transaction) IsCredit() bool {
	return t.TxnType == Credit
}

// SignInRequest is the body of a sign-in call.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is the body of a sign-up call.
type SignUpRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AuthResult is the server's answer to sign-in and sign-up.
type AuthResult struct {
	Token       string `json:"token"`
	Type        string `json:"type"`
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// TransferRequest is a money-movement instruction.
type TransferRequest struct {
	FromAccountID int64           `json:"fromAccountId"`
	ToAccountID   int64           `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// TransferResult is the outcome of a transfer.
type TransferResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	TransferID int64  `json:"transferId,omitempty"`
}

// Transfer is a recorded money movement between two accounts.
type Transfer struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	FromAccountID int64           `json:"fromAccountId"`
	ToAccountID   int64           `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// User represents a registered user of the backend.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
