package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost-server/internal/logger"
	"github.com/inkpost/inkpost-server/internal/store"
	"github.com/inkpost/inkpost-server/internal/store/sqlite"
)

// execute runs inkctl against dataDir and returns stdout.
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV", "development")
	t.Setenv("SEARCH_ENABLED", "false")

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--data-path", dataDir,
		"--env-file", filepath.Join(dataDir, "missing.env"),
	}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func openTestStore(t *testing.T, dataDir string) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(dataDir, "inkpost.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "inkctl", cmd.Use)

	for _, name := range []string{"create-user", "wait-for-db", "seed"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	envFile := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFile)
	assert.Equal(t, ".env", envFile.DefValue)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestCreateUser(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	out, err := execute(t, dataDir, "create-user",
		"--email", "Admin@Example.COM",
		"--password", "correct horse",
		"--name", "Admin",
		"--staff",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "(Admin@example.com) staff=true")

	user, err := openTestStore(t, dataDir).GetUserByEmail(context.Background(), "Admin@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsActive)
	assert.Equal(t, "Admin", user.Name)
}

func TestCreateUser_Duplicate(t *testing.T) {
	dataDir := t.TempDir()
	args := []string{"create-user", "--email", "dup@example.com", "--password", "correct horse"}

	_, err := execute(t, dataDir, args...)
	require.NoError(t, err)

	_, err = execute(t, dataDir, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestCreateUser_ValidationDetails(t *testing.T) {
	_, err := execute(t, t.TempDir(), "create-user", "--email", "not-an-email", "--password", "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}

func TestCreateUser_RequiresFlags(t *testing.T) {
	_, err := execute(t, t.TempDir(), "create-user", "--email", "x@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestWaitForDB_Available(t *testing.T) {
	dataDir := t.TempDir()
	openTestStore(t, dataDir)

	out, err := execute(t, dataDir, "wait-for-db", "--timeout", "2s")
	require.NoError(t, err)
	assert.Contains(t, out, "after 1 attempt(s)")
}

func TestWaitForDB_DoesNotCreateDatabase(t *testing.T) {
	dataDir := t.TempDir()

	_, err := execute(t, dataDir, "wait-for-db", "--timeout", "100ms", "--interval", "20ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")

	_, err = os.Stat(filepath.Join(dataDir, "inkpost.db"))
	assert.True(t, os.IsNotExist(err), "wait-for-db must not create the database")
}

func TestWaitForDB_TimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "inkpost.db")

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	failures := 0
	attempts, err := waitForDB(ctx, path, 20*time.Millisecond, func(int, error) { failures++ })
	require.Error(t, err)
	assert.Greater(t, attempts, 1)
	assert.Equal(t, attempts, failures)
}

func TestWaitForDB_SucceedsOnceServerInitializes(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "inkpost.db")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	attempts, err := waitForDB(ctx, path, 20*time.Millisecond, func(attempt int, _ error) {
		if attempt == 2 {
			openTestStore(t, dataDir)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestLoadFixture(t *testing.T) {
	fx, err := LoadFixture(filepath.Join("testdata", "fixture.yaml"))
	require.NoError(t, err)

	require.Len(t, fx.Users, 2)
	ada := fx.Users[0]
	assert.True(t, ada.Staff)
	require.Len(t, ada.Posts, 2)
	assert.Equal(t, []string{"go", "sqlite"}, ada.Posts[0].Tags)
	require.NotNil(t, ada.Posts[0].Sections[0].Description)
	assert.Equal(t, "Why it matters", *ada.Posts[0].Sections[0].Description)
	require.NotNil(t, ada.Posts[1].Visible)
	assert.False(t, *ada.Posts[1].Visible)
	assert.Nil(t, fx.Users[1].Posts[0].Visible)
}

func TestLoadFixture_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: [\n"), 0o600))

	_, err := LoadFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse fixture")
}

func TestSeed(t *testing.T) {
	dataDir := t.TempDir()
	fixture, err := filepath.Abs(filepath.Join("testdata", "fixture.yaml"))
	require.NoError(t, err)

	out, err := execute(t, dataDir, "seed", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 users (0 existing), 3 posts")

	st := openTestStore(t, dataDir)
	ctx := context.Background()

	ada, err := st.GetUserByEmail(ctx, "Ada@example.com")
	require.NoError(t, err)
	assert.True(t, ada.IsStaff)
	grace, err := st.GetUserByEmail(ctx, "grace@example.com")
	require.NoError(t, err)

	adaTags, err := st.ListTags(ctx, store.AttributeFilter{OwnerID: ada.ID})
	require.NoError(t, err)
	assert.Len(t, adaTags, 2, "\"go\" is shared between Ada's posts")

	graceTags, err := st.ListTags(ctx, store.AttributeFilter{OwnerID: grace.ID})
	require.NoError(t, err)
	require.Len(t, graceTags, 1)
	assert.Equal(t, "go", graceTags[0].Name)

	out, err = execute(t, dataDir, "seed", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 0 users (2 existing), 3 posts")
}
