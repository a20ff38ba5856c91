package main

import (
	"errors"
	"strings"

	"financial-app/internal/handlers"
	"financial-app/internal/models"

	"github.com/shopspring/decimal"
)

// Form errors shown on the login, sign-up and transfer screens.
var (
	errMissingFields    = errors.New("Please fill in all fields")
	errShortPassword    = errors.New("Password must be at least 6 characters long")
	errPasswordMismatch = errors.New("Passwords do not match")
	errInvalidAmount    = errors.New("Please enter a valid amount")
	errSameAccount      = errors.New("Cannot transfer to the same account")
	errUnknownAccount   = errors.New("Please select a valid account")
	errInsufficient     = errors.New("Insufficient funds")
)

type signUpForm struct {
	Username        string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

func validateSignIn(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return errMissingFields
	}
	return nil
}

func validateSignUp(f signUpForm) error {
	switch {
	case strings.TrimSpace(f.Username) == "", strings.TrimSpace(f.Email) == "", f.Password == "", f.ConfirmPassword == "":
		return errMissingFields
	case len(f.Password) < handlers.MinPasswordLength:
		return errShortPassword
	case f.Password != f.ConfirmPassword:
		return errPasswordMismatch
	}
	return nil
}

func (f signUpForm) request() models.SignUpRequest {
	return models.SignUpRequest{
		Username:    strings.TrimSpace(f.Username),
		Email:       strings.TrimSpace(f.Email),
		Password:    f.Password,
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
	}
}

// validateTransfer checks a transfer against the caller's accounts before it
// is sent.
func validateTransfer(req models.TransferRequest, accounts []models.Account) error {
	if !req.Amount.IsPositive() {
		return errInvalidAmount
	}
	if req.FromAccountID == req.ToAccountID {
		return errSameAccount
	}

	var from *models.Account
	for i := range accounts {
		if accounts[i].ID == req.FromAccountID {
			from = &accounts[i]
		}
	}
	if from == nil {
		return errUnknownAccount
	}
	if from.Balance.LessThan(req.Amount) {
		return errInsufficient
	}
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errInvalidAmount
	}
	return amount, nil
}
