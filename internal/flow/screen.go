// Package flow routes the user between screens.
package flow

import "fmt"

// Screen identifies the visible view.
type Screen uint8

// Screens. Loading is transient and only exists until the startup auth check
// completes.
const (
	Loading Screen = iota
	Login
	SignUp
	Landing
	Balance
	Transactions
	Transfer
	Bills
	AccountManagement
	BudgetTracker
	SavingsGoals
	Notifications
	Settings
)

var screenNames = [...]string{
	Loading:           "loading",
	Login:             "login",
	SignUp:            "signup",
	Landing:           "landing",
	Balance:           "balance",
	Transactions:      "transactions",
	Transfer:          "transfer",
	Bills:             "bills",
	AccountManagement: "account-management",
	BudgetTracker:     "budget-tracker",
	SavingsGoals:      "savings-goals",
	Notifications:     "notifications",
	Settings:          "settings",
}

func (s Screen) String() string {
	if int(s) < len(screenNames) {
		return screenNames[s]
	}
	return fmt.Sprintf("screen(%d)", uint8(s))
}

// IsLeaf reports whether s is reached from the landing screen's quick actions.
func (s Screen) IsLeaf() bool {
	return s >= Balance && s <= Settings
}

// LeafScreens returns the quick-action targets in display order.
func LeafScreens() []Screen {
	leaves := make([]Screen, 0, Settings-Balance+1)
	for s := Balance; s <= Settings; s++ {
		leaves = append(leaves, s)
	}
	return leaves
}

// ParseScreen maps a tag such as "budget-tracker" back to its Screen.
func ParseScreen(name string) (Screen, error) {
	for i, n := range screenNames {
		if n == name {
			return Screen(i), nil
		}
	}
	return 0, fmt.Errorf("unknown screen %q", name)
}
