package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"financial-app/internal/models"

	"github.com/shopspring/decimal"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

var (
	// ErrEmailTaken is returned when signing up with an email already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrFromAccountNotFound is returned when the source account does not exist.
	ErrFromAccountNotFound = errors.New("from account not found")
	// ErrToAccountNotFound is returned when the destination account does not exist.
	ErrToAccountNotFound = errors.New("to account not found")
	// ErrNotOwner is returned when transferring from another user's account.
	ErrNotOwner = errors.New("source account not owned by user")
	// ErrInvalidAmount is returned for zero or negative transfer amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds is returned when the source balance is too low.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccount is returned when source and destination are the same account.
	ErrSameAccount = errors.New("cannot transfer to the same account")
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" shared.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			phone_number TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			currency TEXT NOT NULL,
			balance TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			txn_type TEXT NOT NULL,
			category TEXT NOT NULL,
			amount TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			occurred_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transfers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			from_account_id INTEGER NOT NULL,
			to_account_id INTEGER NOT NULL,
			amount TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, occurred_at)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser creates a new user. It fails with ErrEmailTaken if the email is in use.
func (db *DB) CreateUser(username, email, passwordHash, phoneNumber string) (*models.User, error) {
	if _, err := db.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	result, err := db.conn.Exec(
		"INSERT INTO users (username, email, password_hash, phone_number, created_at) VALUES (?, ?, ?, ?, ?)",
		username, email, passwordHash, phoneNumber, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

const userColumns = "id, username, email, password_hash, phone_number, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	return scanUser(db.conn.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(db.conn.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// CreateAccount opens an account for userID with an initial balance.
func (db *DB) CreateAccount(userID int64, name, accountType, currency string, balance decimal.Decimal) (*models.Account, error) {
	result, err := db.conn.Exec(
		"INSERT INTO accounts (user_id, name, type, currency, balance, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		userID, name, accountType, currency, balance.String(), time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetAccount(id)
}

// DefaultCurrency is used for accounts opened without an explicit currency.
const DefaultCurrency = "EGP"

// OpenStarterAccounts gives a new user a checking and a savings account,
// the checking one funded with opening.
func (db *DB) OpenStarterAccounts(userID int64, opening decimal.Decimal) ([]models.Account, error) {
	checking, err := db.CreateAccount(userID, "Checking", "checking", DefaultCurrency, opening)
	if err != nil {
		return nil, fmt.Errorf("open checking account: %w", err)
	}
	savings, err := db.CreateAccount(userID, "Savings", "savings", DefaultCurrency, decimal.Zero)
	if err != nil {
		return nil, fmt.Errorf("open savings account: %w", err)
	}
	return []models.Account{*checking, *savings}, nil
}

const accountColumns = "id, user_id, name, type, currency, balance, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Currency, &a.Balance, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAccount retrieves a single account by ID.
func (db *DB) GetAccount(id int64) (*models.Account, error) {
	return scanAccount(db.conn.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
}

// ListAccounts retrieves the accounts of a user, oldest first.
func (db *DB) ListAccounts(userID int64) ([]models.Account, error) {
	rows, err := db.conn.Query("SELECT "+accountColumns+" FROM accounts WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// CreateTransaction records a ledger entry. A zero OccurredAt is set to now.
func (db *DB) CreateTransaction(t *models.Transaction) error {
	return insertTransaction(db.conn, t)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertTransaction(ex execer, t *models.Transaction) error {
	if t.OccurredAt.IsZero() {
		t.OccurredAt = time.Now().UTC()
	}
	result, err := ex.Exec(
		`INSERT INTO transactions (user_id, account_id, txn_type, category, amount, description, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.AccountID, t.TxnType, t.Category, t.Amount.String(), t.Description, t.OccurredAt,
	)
	if err != nil {
		return err
	}
	t.ID, err = result.LastInsertId()
	return err
}

// ListTransactions retrieves the ledger entries of a user, most recent first.
func (db *DB) ListTransactions(userID int64) ([]models.Transaction, error) {
	rows, err := db.conn.Query(`
		SELECT id, user_id, account_id, txn_type, category, amount, description, occurred_at
		FROM transactions WHERE user_id = ? ORDER BY occurred_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.TxnType, &t.Category, &t.Amount, &t.Description, &t.OccurredAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// ProcessTransfer moves money between two accounts on behalf of userID. Balances,
// the transfer record and a debit/credit pair of ledger entries are written in
// one database transaction.
func (db *DB) ProcessTransfer(userID int64, req models.TransferRequest) (*models.Transfer, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	getAccount := func(id int64, notFound error) (*models.Account, error) {
		a, err := scanAccount(tx.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return a, err
	}

	from, err := getAccount(req.FromAccountID, ErrFromAccountNotFound)
	if err != nil {
		return nil, err
	}
	to, err := getAccount(req.ToAccountID, ErrToAccountNotFound)
	if err != nil {
		return nil, err
	}

	if from.UserID != userID {
		return nil, ErrNotOwner
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if from.Balance.LessThan(req.Amount) {
		return nil, ErrInsufficientFunds
	}
	if from.ID == to.ID {
		return nil, ErrSameAccount
	}

	updates := []struct {
		id      int64
		balance decimal.Decimal
	}{
		{from.ID, from.Balance.Sub(req.Amount)},
		{to.ID, to.Balance.Add(req.Amount)},
	}
	for _, u := range updates {
		if _, err := tx.Exec("UPDATE accounts SET balance = ? WHERE id = ?", u.balance.String(), u.id); err != nil {
			return nil, fmt.Errorf("update balance of account %d: %w", u.id, err)
		}
	}

	now := time.Now().UTC()
	transfer := &models.Transfer{
		UserID:        userID,
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        req.Amount,
		Description:   req.Description,
		CreatedAt:     now,
	}
	result, err := tx.Exec(
		`INSERT INTO transfers (user_id, from_account_id, to_account_id, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		transfer.UserID, transfer.FromAccountID, transfer.ToAccountID, transfer.Amount.String(), transfer.Description, transfer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if transfer.ID, err = result.LastInsertId(); err != nil {
		return nil, err
	}

	debitDesc, creditDesc := req.Description, req.Description
	if debitDesc == "" {
		debitDesc = "Transfer to " + to.Name
		creditDesc = "Transfer from " + from.Name
	}
	entries := []models.Transaction{
		{UserID: from.UserID, AccountID: from.ID, TxnType: models.Debit, Category: "transfer", Amount: req.Amount, Description: debitDesc, OccurredAt: now},
		{UserID: to.UserID, AccountID: to.ID, TxnType: models.Credit, Category: "transfer", Amount: req.Amount, Description: creditDesc, OccurredAt: now},
	}
	for i := range entries {
		if err := insertTransaction(tx, &entries[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return transfer, nil
}
