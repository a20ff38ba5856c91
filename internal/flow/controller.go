package flow

import (
	"context"
	"errors"
	"log"
	"sync"

	"financial-app/internal/models"
	"financial-app/internal/session"
)

var (
	// ErrNotReady is returned for events issued before the startup check completes.
	ErrNotReady = errors.New("startup auth check has not completed")
	// ErrCheckInProgress is returned when Start is called while a check is outstanding.
	ErrCheckInProgress = errors.New("startup auth check already in progress")
	// ErrAlreadyStarted is returned when Start is called after the check completed.
	ErrAlreadyStarted = errors.New("controller already started")
)

// Client is the part of the API client the controller drives.
type Client interface {
	IsAuthenticated(ctx context.Context) (bool, error)
	SignIn(ctx context.Context, email, password string) (*models.AuthResult, error)
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResult, error)
}

// Controller owns the current screen. Transitions happen only through its
// methods, one at a time.
type Controller struct {
	client Client
	store  session.Store
	logger *log.Logger

	mu       sync.Mutex
	current  Screen
	checking bool
	user     *models.AuthResult
}

// New returns a controller in the Loading state. Call Start before anything else.
func New(client Client, store session.Store, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{client: client, store: store, logger: logger, current: Loading}
}

// Current returns the visible screen.
func (c *Controller) Current() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// User returns the account info of the last successful sign-in or sign-up in
// this process, or nil.
func (c *Controller) User() *models.AuthResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Start runs the startup auth check and leaves Loading for Landing or Login.
// A failing check is logged and treated as signed out.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.checking {
		c.mu.Unlock()
		return ErrCheckInProgress
	}
	if c.current != Loading {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.checking = true
	c.mu.Unlock()

	ok, err := c.client.IsAuthenticated(ctx)
	if err != nil {
		c.logger.Printf("Auth check failed: %v", err)
		ok = false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checking = false
	next, err := Next(c.current, Event{Kind: AuthChecked, Authenticated: ok})
	if err != nil {
		return err
	}
	c.current = next
	return nil
}

// Dispatch applies ev to the current screen.
func (c *Controller) Dispatch(ev Event) (Screen, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatchLocked(ev)
}

func (c *Controller) dispatchLocked(ev Event) (Screen, error) {
	if c.current == Loading {
		return c.current, ErrNotReady
	}
	next, err := Next(c.current, ev)
	if err != nil {
		return c.current, err
	}
	c.current = next
	return next, nil
}

// Navigate opens a quick-action screen from Landing.
func (c *Controller) Navigate(target Screen) (Screen, error) {
	return c.Dispatch(Event{Kind: Select, Target: target})
}

// Back returns from a leaf screen to Landing, or from SignUp to Login.
func (c *Controller) Back() (Screen, error) {
	return c.Dispatch(Event{Kind: Back})
}

// ShowSignUp moves from Login to SignUp.
func (c *Controller) ShowSignUp() (Screen, error) {
	return c.Dispatch(Event{Kind: ShowSignUp})
}

// ShowLogin moves from SignUp to Login.
func (c *Controller) ShowLogin() (Screen, error) {
	return c.Dispatch(Event{Kind: ShowLogin})
}

// SignIn authenticates, stores the returned token and moves to Landing. If the
// token cannot be saved the failure is logged and navigation proceeds.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*models.AuthResult, error) {
	if err := c.expect(Event{Kind: SignedIn}); err != nil {
		return nil, err
	}
	res, err := c.client.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return res, c.completeAuth(ctx, res, SignedIn)
}

// SignUp registers, stores the returned token and moves to Landing.
func (c *Controller) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResult, error) {
	if err := c.expect(Event{Kind: SignedUp}); err != nil {
		return nil, err
	}
	res, err := c.client.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}
	return res, c.completeAuth(ctx, res, SignedUp)
}

func (c *Controller) completeAuth(ctx context.Context, res *models.AuthResult, kind EventKind) error {
	if err := c.store.Save(ctx, res.Token); err != nil {
		c.logger.Printf("Failed to store token: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.dispatchLocked(Event{Kind: kind}); err != nil {
		return err
	}
	c.user = res
	return nil
}

// Logout clears the stored credential and only then moves to Login. If the
// clear fails the controller stays on Landing and the error is returned.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.expect(Event{Kind: LoggedOut}); err != nil {
		return err
	}
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Printf("Failed to remove stored token: %v", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.dispatchLocked(Event{Kind: LoggedOut}); err != nil {
		return err
	}
	c.user = nil
	return nil
}

// expect checks that ev would be accepted without applying it.
func (c *Controller) expect(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == Loading {
		return ErrNotReady
	}
	_, err := Next(c.current, ev)
	return err
}
