package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite runs the same contract against every Store implementation
type StoreTestSuite struct {
	suite.Suite
	open  func() ClosableStore
	store ClosableStore
}

// SetupTest runs before each test
func (suite *StoreTestSuite) SetupTest() {
	suite.store = suite.open()
}

// TearDownTest runs after each test
func (suite *StoreTestSuite) TearDownTest() {
	if suite.store != nil {
		suite.store.Close()
	}
}

func (suite *StoreTestSuite) TestEmptyStoreIsAbsent() {
	token, ok, err := suite.store.Get(context.Background())
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
	assert.Empty(suite.T(), token)
}

func (suite *StoreTestSuite) TestSaveThenGet() {
	ctx := context.Background()
	for _, token := range []string{"first", "", "eyJhbGciOiJIUzI1NiJ9.e30.sig"} {
		require.NoError(suite.T(), suite.store.Save(ctx, token))

		got, ok, err := suite.store.Get(ctx)
		require.NoError(suite.T(), err)
		assert.True(suite.T(), ok, "token %q should be present", token)
		assert.Equal(suite.T(), token, got)
	}
}

func (suite *StoreTestSuite) TestClear() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.store.Save(ctx, "token"))
	require.NoError(suite.T(), suite.store.Clear(ctx))

	_, ok, err := suite.store.Get(ctx)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)

	// Clearing an empty store is not an error
	assert.NoError(suite.T(), suite.store.Clear(ctx))
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{open: func() ClosableStore { return NewMemoryStore() }})
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{open: func() ClosableStore {
		s, err := NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return s
	}})
}

// TestRedisStoreSuite needs a running server; set FINAPP_TEST_REDIS_URL to run it.
func TestRedisStoreSuite(t *testing.T) {
	url := os.Getenv("FINAPP_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FINAPP_TEST_REDIS_URL not set, skipping redis store tests")
	}
	suite.Run(t, &StoreTestSuite{open: func() ClosableStore {
		s, err := NewRedisStore(url)
		require.NoError(t, err)
		require.NoError(t, s.Clear(context.Background()))
		return s
	}})
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "persisted"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	token, ok, err := second.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestSQLiteStoreUnavailable(t *testing.T) {
	// A directory cannot be opened as a database file
	_, err := NewSQLiteStore(t.TempDir())
	require.Error(t, err)

	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr), "expected a StorageError, got %T", err)
}

func TestSQLiteStoreClosed(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	var storageErr *StorageError

	err = s.Save(ctx, "token")
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "save", storageErr.Op)

	_, _, err = s.Get(ctx)
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "get", storageErr.Op)

	err = s.Clear(ctx)
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "clear", storageErr.Op)
}

func TestRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore("http://localhost:6379")
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestOpen(t *testing.T) {
	mem, err := Open("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	file, err := Open(filepath.Join(t.TempDir(), "s.db"), "")
	require.NoError(t, err)
	defer file.Close()
	assert.IsType(t, &SQLiteStore{}, file)
}
