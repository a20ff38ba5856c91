package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"financial-app/internal/apiclient"
	"financial-app/internal/config"
	"financial-app/internal/flow"
	"financial-app/internal/models"
	"financial-app/internal/report"
	"financial-app/internal/session"

	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("finapp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	apiURL := fs.String("api", cfg.APIBaseURL, "API base URL (default derived from FINAPP_HOST_URI)")
	sessionDB := fs.String("session", cfg.SessionDB, "Path to the session database file")
	redisURL := fs.String("redis", cfg.RedisURL, "Redis URL for the session store (overrides -session)")
	ephemeral := fs.Bool("ephemeral", false, "Keep the session in memory only")
	timeout := fs.Duration("timeout", cfg.HTTPTimeout, "HTTP request timeout")

	if err := fs.Parse(args); err != nil {
		return err
	}

	path, rURL := *sessionDB, *redisURL
	if *ephemeral {
		path, rURL = "", ""
	}
	store, err := session.Open(path, rURL)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	logger := log.New(stderr, "finapp: ", log.LstdFlags)

	baseURL := *apiURL
	if baseURL == "" {
		baseURL = apiclient.ResolveBaseURL(cfg.HostURI)
	}
	client := apiclient.New(store,
		apiclient.WithBaseURL(baseURL),
		apiclient.WithHTTPClient(&http.Client{Timeout: *timeout}),
		apiclient.WithLogger(logger),
	)

	a := &app{
		client: client,
		ctrl:   flow.New(client, store, logger),
		stdin:  stdin,
		lines:  bufio.NewScanner(stdin),
		out:    stdout,
	}
	return a.loop(context.Background())
}

// app is the terminal front-end. It renders the controller's current screen
// and turns typed commands into controller events and API calls.
type app struct {
	client *apiclient.Client
	ctrl   *flow.Controller
	stdin  io.Reader
	lines  *bufio.Scanner
	out    io.Writer

	// accounts is the last fetched account list, used to validate transfers
	accounts []models.Account
}

var screenTitles = map[flow.Screen]string{
	flow.Loading:           "Loading",
	flow.Login:             "Sign In",
	flow.SignUp:            "Create Account",
	flow.Landing:           "Home",
	flow.Balance:           "Balance",
	flow.Transactions:      "Transactions",
	flow.Transfer:          "Transfer Money",
	flow.Bills:             "Pay Bills",
	flow.AccountManagement: "Account Management",
	flow.BudgetTracker:     "Budget Tracker",
	flow.SavingsGoals:      "Savings Goals",
	flow.Notifications:     "Notifications",
	flow.Settings:          "Settings",
}

func (a *app) loop(ctx context.Context) error {
	fmt.Fprintln(a.out, "Checking session...")
	if err := a.ctrl.Start(ctx); err != nil {
		return err
	}
	a.render(ctx)

	for {
		fmt.Fprintf(a.out, "[%s]> ", a.ctrl.Current())
		line, ok := a.readLine()
		if !ok {
			fmt.Fprintln(a.out)
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		cmd, args := strings.ToLower(fields[0]), fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := a.exec(ctx, cmd, args); err != nil {
			a.showError(err)
		}
	}
}

func (a *app) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		a.help()
	case "login":
		return a.login(ctx)
	case "signup":
		return a.signUp(ctx)
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <screen>")
		}
		target, err := flow.ParseScreen(strings.ToLower(args[0]))
		if err != nil {
			return err
		}
		if _, err := a.ctrl.Navigate(target); err != nil {
			return err
		}
		a.render(ctx)
	case "back":
		if _, err := a.ctrl.Back(); err != nil {
			return err
		}
		a.render(ctx)
	case "logout":
		if err := a.ctrl.Logout(ctx); err != nil {
			return err
		}
		a.accounts = nil
		fmt.Fprintln(a.out, "You have been logged out.")
		a.render(ctx)
	case "accounts":
		return a.showAccounts(ctx)
	case "transactions":
		return a.showTransactions(ctx)
	case "transfer":
		return a.transfer(ctx, args)
	case "ping":
		msg, err := a.client.TestConnection(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Connected to %s: %s\n", a.client.BaseURL(), msg)
	default:
		return fmt.Errorf("unknown command %q, type help for a list", cmd)
	}
	return nil
}

func (a *app) render(ctx context.Context) {
	screen := a.ctrl.Current()
	fmt.Fprintf(a.out, "== %s ==\n", screenTitles[screen])

	switch screen {
	case flow.Login:
		fmt.Fprintln(a.out, "Type login to sign in or signup to create an account.")
	case flow.SignUp:
		fmt.Fprintln(a.out, "Type signup to fill in the form or back to return to sign in.")
	case flow.Landing:
		if u := a.ctrl.User(); u != nil {
			fmt.Fprintf(a.out, "Welcome, %s!\n", u.Username)
		}
		fmt.Fprintln(a.out, "Quick actions:")
		for _, s := range flow.LeafScreens() {
			fmt.Fprintf(a.out, "  open %-20s %s\n", s, screenTitles[s])
		}
		fmt.Fprintln(a.out, "Type logout to sign out.")
	case flow.Balance:
		if err := a.showAccounts(ctx); err != nil {
			a.showError(err)
		}
	case flow.Transactions:
		if err := a.showTransactions(ctx); err != nil {
			a.showError(err)
		}
	case flow.Transfer:
		if err := a.showAccounts(ctx); err != nil {
			a.showError(err)
		}
		fmt.Fprintln(a.out, "Type transfer <from> <to> <amount> [note] to send money.")
	default:
		fmt.Fprintln(a.out, "Nothing to show here yet. Type back to return home.")
	}
}

func (a *app) help() {
	fmt.Fprintln(a.out, "Commands:")
	fmt.Fprintln(a.out, "  login                                sign in")
	fmt.Fprintln(a.out, "  signup                               create an account")
	fmt.Fprintln(a.out, "  open <screen>                        open a quick action from home")
	fmt.Fprintln(a.out, "  back                                 go back")
	fmt.Fprintln(a.out, "  logout                               sign out")
	fmt.Fprintln(a.out, "  accounts                             list your accounts")
	fmt.Fprintln(a.out, "  transactions                         list your transactions")
	fmt.Fprintln(a.out, "  transfer <from> <to> <amount> [note] move money between accounts")
	fmt.Fprintln(a.out, "  ping                                 check the backend connection")
	fmt.Fprintln(a.out, "  quit                                 exit")
}

func (a *app) login(ctx context.Context) error {
	if a.ctrl.Current() == flow.SignUp {
		if _, err := a.ctrl.ShowLogin(); err != nil {
			return err
		}
	}
	if a.ctrl.Current() != flow.Login {
		return errors.New("already signed in")
	}

	email := a.prompt("Email: ")
	password, err := a.promptPassword("Password: ")
	if err != nil {
		return err
	}
	if err := validateSignIn(email, password); err != nil {
		return err
	}

	if _, err := a.ctrl.SignIn(ctx, strings.TrimSpace(email), password); err != nil {
		return err
	}
	a.render(ctx)
	return nil
}

func (a *app) signUp(ctx context.Context) error {
	if a.ctrl.Current() == flow.Login {
		if _, err := a.ctrl.ShowSignUp(); err != nil {
			return err
		}
	}
	if a.ctrl.Current() != flow.SignUp {
		return errors.New("already signed in")
	}

	var f signUpForm
	var err error
	f.Username = a.prompt("Username: ")
	f.Email = a.prompt("Email: ")
	f.PhoneNumber = a.prompt("Phone number (optional): ")
	if f.Password, err = a.promptPassword("Password: "); err != nil {
		return err
	}
	if f.ConfirmPassword, err = a.promptPassword("Confirm password: "); err != nil {
		return err
	}
	if err := validateSignUp(f); err != nil {
		return err
	}

	if _, err := a.ctrl.SignUp(ctx, f.request()); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account created successfully!")
	a.render(ctx)
	return nil
}

func (a *app) showAccounts(ctx context.Context) error {
	accounts, err := a.client.GetAccounts(ctx)
	if err != nil {
		return err
	}
	a.accounts = accounts

	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "No accounts found.")
		return nil
	}
	for _, acc := range accounts {
		fmt.Fprintf(a.out, "  #%-4d %-20s %-10s %12s %s\n", acc.ID, acc.Name, acc.Type, acc.Balance.StringFixed(2), acc.Currency)
	}
	for currency, total := range report.TotalBalance(accounts) {
		fmt.Fprintf(a.out, "  Total balance: %s %s\n", total.StringFixed(2), currency)
	}
	return nil
}

func (a *app) showTransactions(ctx context.Context) error {
	txns, err := a.client.GetTransactions(ctx)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Fprintln(a.out, "No transactions yet.")
		return nil
	}

	for _, t := range txns {
		sign := "-"
		if t.IsCredit() {
			sign = "+"
		}
		fmt.Fprintf(a.out, "  %s  %-30s %s%s\n", t.OccurredAt.Local().Format(time.DateOnly), t.Description, sign, t.Amount.StringFixed(2))
	}

	s := report.Summarize(txns)
	fmt.Fprintf(a.out, "  Income: %s  Spent: %s  Net: %s\n", s.Income.StringFixed(2), s.Spent.StringFixed(2), s.Net.StringFixed(2))
	for _, c := range s.Categories {
		fmt.Fprintf(a.out, "    %-15s %10s  %5.1f%%\n", c.Category, c.Total.StringFixed(2), c.Percentage)
	}
	return nil
}

func (a *app) transfer(ctx context.Context, args []string) error {
	if a.ctrl.Current() != flow.Transfer {
		return errors.New("open transfer first")
	}
	if len(args) < 3 {
		return errors.New("usage: transfer <from> <to> <amount> [note]")
	}

	from, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errUnknownAccount
	}
	to, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errUnknownAccount
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	req := models.TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Description:   strings.Join(args[3:], " "),
	}

	if a.accounts == nil {
		if a.accounts, err = a.client.GetAccounts(ctx); err != nil {
			return err
		}
	}
	if err := validateTransfer(req, a.accounts); err != nil {
		return err
	}

	res, err := a.client.TransferMoney(ctx, req)
	if err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Fprintf(a.out, "%s (transfer #%d)\n", res.Message, res.TransferID)

	// Balances changed; refresh them
	return a.showAccounts(ctx)
}

func (a *app) showError(err error) {
	var apiErr *apiclient.APIError
	var netErr *apiclient.NetworkError
	switch {
	case apiclient.IsUnauthorized(err):
		fmt.Fprintln(a.out, "Error: your session is no longer valid. Log out and sign in again.")
	case errors.As(err, &apiErr):
		fmt.Fprintf(a.out, "Error: %s\n", transferMessage(apiErr.Message))
	case errors.As(err, &netErr):
		fmt.Fprintf(a.out, "Error: cannot reach the server at %s\n", a.client.BaseURL())
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

// transferMessage pulls the message out of a failed transfer's JSON body.
func transferMessage(body string) string {
	var res models.TransferResult
	if err := json.Unmarshal([]byte(body), &res); err == nil && res.Message != "" {
		return res.Message
	}
	return body
}

func (a *app) readLine() (string, bool) {
	if !a.lines.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.lines.Text()), true
}

func (a *app) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := a.readLine()
	return line
}

func (a *app) promptPassword(label string) (string, error) {
	fmt.Fprint(a.out, label)
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	if !a.lines.Scan() {
		if err := a.lines.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", io.EOF
	}
	return a.lines.Text(), nil
}
