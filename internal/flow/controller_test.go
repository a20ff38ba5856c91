package flow

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"financial-app/internal/models"
	"financial-app/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeClient reports authentication from the shared store, like the real client.
type fakeClient struct {
	store     session.Store
	signInErr error
	signUpErr error
	checkErr  error
	// gate, when set, blocks IsAuthenticated until closed
	gate    chan struct{}
	entered chan struct{}
	calls   []string
}

func (f *fakeClient) IsAuthenticated(ctx context.Context) (bool, error) {
	f.calls = append(f.calls, "check")
	if f.gate != nil {
		close(f.entered)
		<-f.gate
	}
	if f.checkErr != nil {
		return false, f.checkErr
	}
	_, ok, err := f.store.Get(ctx)
	return ok, err
}

func (f *fakeClient) SignIn(ctx context.Context, email, password string) (*models.AuthResult, error) {
	f.calls = append(f.calls, "signin")
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &models.AuthResult{Token: "token-" + email, Type: "Bearer", ID: 1, Email: email, Username: "ada"}, nil
}

func (f *fakeClient) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResult, error) {
	f.calls = append(f.calls, "signup")
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &models.AuthResult{Token: "new-" + req.Email, Type: "Bearer", ID: 2, Email: req.Email, Username: req.Username}, nil
}

// brokenStore wraps a MemoryStore and fails selected operations.
type brokenStore struct {
	*session.MemoryStore
	failSave  bool
	failClear bool
}

func (b *brokenStore) Save(ctx context.Context, token string) error {
	if b.failSave {
		return &session.StorageError{Op: "save", Err: errors.New("read-only")}
	}
	return b.MemoryStore.Save(ctx, token)
}

func (b *brokenStore) Clear(ctx context.Context) error {
	if b.failClear {
		return &session.StorageError{Op: "clear", Err: errors.New("read-only")}
	}
	return b.MemoryStore.Clear(ctx)
}

// ControllerTestSuite drives the controller through the app's screen flow
type ControllerTestSuite struct {
	suite.Suite
	store  *brokenStore
	client *fakeClient
	logs   *bytes.Buffer
	ctrl   *Controller
}

// SetupTest runs before each test
func (suite *ControllerTestSuite) SetupTest() {
	suite.store = &brokenStore{MemoryStore: session.NewMemoryStore()}
	suite.client = &fakeClient{store: suite.store}
	suite.logs = new(bytes.Buffer)
	suite.ctrl = New(suite.client, suite.store, log.New(suite.logs, "", 0))
}

func (suite *ControllerTestSuite) start() {
	require.NoError(suite.T(), suite.ctrl.Start(context.Background()))
}

func (suite *ControllerTestSuite) TestStartsInLoading() {
	assert.Equal(suite.T(), Loading, suite.ctrl.Current())
	assert.Nil(suite.T(), suite.ctrl.User())
}

func (suite *ControllerTestSuite) TestStartWithoutCredential() {
	suite.start()
	assert.Equal(suite.T(), Login, suite.ctrl.Current())
}

func (suite *ControllerTestSuite) TestStartWithCredential() {
	require.NoError(suite.T(), suite.store.Save(context.Background(), "persisted"))
	suite.start()
	assert.Equal(suite.T(), Landing, suite.ctrl.Current())
}

func (suite *ControllerTestSuite) TestStartWithFailingCheck() {
	suite.client.checkErr = errors.New("keychain locked")
	suite.start()
	assert.Equal(suite.T(), Login, suite.ctrl.Current())
	assert.Contains(suite.T(), suite.logs.String(), "Auth check failed")
}

func (suite *ControllerTestSuite) TestStartOnlyOnce() {
	suite.start()
	assert.ErrorIs(suite.T(), suite.ctrl.Start(context.Background()), ErrAlreadyStarted)
	assert.Equal(suite.T(), []string{"check"}, suite.client.calls)
}

func (suite *ControllerTestSuite) TestEventsBeforeStart() {
	ctx := context.Background()

	_, err := suite.ctrl.Back()
	assert.ErrorIs(suite.T(), err, ErrNotReady)
	_, err = suite.ctrl.Navigate(Balance)
	assert.ErrorIs(suite.T(), err, ErrNotReady)
	_, err = suite.ctrl.SignIn(ctx, "a@example.com", "pw")
	assert.ErrorIs(suite.T(), err, ErrNotReady)
	assert.ErrorIs(suite.T(), suite.ctrl.Logout(ctx), ErrNotReady)

	assert.Equal(suite.T(), Loading, suite.ctrl.Current())
	assert.Empty(suite.T(), suite.client.calls, "nothing reaches the backend before startup")
}

func (suite *ControllerTestSuite) TestStartWhileChecking() {
	suite.client.gate = make(chan struct{})
	suite.client.entered = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- suite.ctrl.Start(context.Background()) }()
	<-suite.client.entered

	assert.ErrorIs(suite.T(), suite.ctrl.Start(context.Background()), ErrCheckInProgress)
	_, err := suite.ctrl.ShowSignUp()
	assert.ErrorIs(suite.T(), err, ErrNotReady)

	close(suite.client.gate)
	require.NoError(suite.T(), <-done)
	assert.Equal(suite.T(), Login, suite.ctrl.Current())
}

func (suite *ControllerTestSuite) TestSignInStoresThenNavigates() {
	ctx := context.Background()
	suite.start()

	res, err := suite.ctrl.SignIn(ctx, "ada@example.com", "pw")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), Landing, suite.ctrl.Current())
	assert.Equal(suite.T(), res, suite.ctrl.User())

	token, ok, err := suite.store.Get(ctx)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "token-ada@example.com", token)
}

func (suite *ControllerTestSuite) TestSignInFailureStaysOnLogin() {
	suite.start()
	suite.client.signInErr = errors.New("Invalid email or password")

	res, err := suite.ctrl.SignIn(context.Background(), "ada@example.com", "bad")
	assert.Nil(suite.T(), res)
	assert.EqualError(suite.T(), err, "Invalid email or password")
	assert.Equal(suite.T(), Login, suite.ctrl.Current())

	_, ok, _ := suite.store.Get(context.Background())
	assert.False(suite.T(), ok)
}

func (suite *ControllerTestSuite) TestSignInWithUnwritableStore() {
	suite.start()
	suite.store.failSave = true

	_, err := suite.ctrl.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), Landing, suite.ctrl.Current())
	assert.Contains(suite.T(), suite.logs.String(), "Failed to store token")
}

func (suite *ControllerTestSuite) TestSignInFromWrongScreen() {
	suite.start()
	_, err := suite.ctrl.ShowSignUp()
	require.NoError(suite.T(), err)

	_, err = suite.ctrl.SignIn(context.Background(), "ada@example.com", "pw")
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
	assert.NotContains(suite.T(), suite.client.calls, "signin")
}

func (suite *ControllerTestSuite) TestSignUpFlow() {
	ctx := context.Background()
	suite.start()

	screen, err := suite.ctrl.ShowSignUp()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), SignUp, screen)

	screen, err = suite.ctrl.ShowLogin()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), Login, screen)

	_, err = suite.ctrl.ShowSignUp()
	require.NoError(suite.T(), err)

	suite.client.signUpErr = errors.New("User with email grace@example.com already exists")
	_, err = suite.ctrl.SignUp(ctx, models.SignUpRequest{Username: "grace", Email: "grace@example.com", Password: "secret1"})
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), SignUp, suite.ctrl.Current())

	suite.client.signUpErr = nil
	res, err := suite.ctrl.SignUp(ctx, models.SignUpRequest{Username: "grace", Email: "grace@example.com", Password: "secret1"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "grace", res.Username)
	assert.Equal(suite.T(), Landing, suite.ctrl.Current())

	token, ok, err := suite.store.Get(ctx)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "new-grace@example.com", token)
}

func (suite *ControllerTestSuite) TestQuickActions() {
	require.NoError(suite.T(), suite.store.Save(context.Background(), "t"))
	suite.start()

	for _, leaf := range LeafScreens() {
		screen, err := suite.ctrl.Navigate(leaf)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), leaf, screen)

		_, err = suite.ctrl.Navigate(Balance)
		assert.ErrorIs(suite.T(), err, ErrInvalidTransition, "leaf screens do not navigate sideways")

		screen, err = suite.ctrl.Back()
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), Landing, screen)
	}
}

func (suite *ControllerTestSuite) TestLogoutClearsBeforeLeaving() {
	ctx := context.Background()
	suite.start()
	_, err := suite.ctrl.SignIn(ctx, "ada@example.com", "pw")
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.ctrl.Logout(ctx))
	assert.Equal(suite.T(), Login, suite.ctrl.Current())
	assert.Nil(suite.T(), suite.ctrl.User())

	_, ok, err := suite.store.Get(ctx)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)

	authed, err := suite.client.IsAuthenticated(ctx)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), authed)
}

func (suite *ControllerTestSuite) TestLogoutFailureStaysOnLanding() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.store.Save(ctx, "t"))
	suite.start()
	suite.store.failClear = true

	err := suite.ctrl.Logout(ctx)
	var storageErr *session.StorageError
	require.ErrorAs(suite.T(), err, &storageErr)
	assert.Equal(suite.T(), Landing, suite.ctrl.Current())

	_, ok, _ := suite.store.Get(ctx)
	assert.True(suite.T(), ok, "credential must survive a failed clear")
}

func (suite *ControllerTestSuite) TestLogoutOnlyFromLanding() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.store.Save(ctx, "t"))
	suite.start()
	_, err := suite.ctrl.Navigate(Settings)
	require.NoError(suite.T(), err)

	assert.ErrorIs(suite.T(), suite.ctrl.Logout(ctx), ErrInvalidTransition)
	_, ok, _ := suite.store.Get(ctx)
	assert.True(suite.T(), ok, "a rejected logout must not clear the credential")
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}
