package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trailfield/trailfield/internal/client/client"
	"github.com/trailfield/trailfield/internal/client/models"
	"github.com/trailfield/trailfield/internal/logging"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRepos(t *testing.T) *client.Repositories {
	t.Helper()
	repos, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.DB.Close() })
	return repos
}

type writeCall struct {
	collection string
	body       []byte
}

// fakeClient is an in-memory stand-in for the API client. Failures are
// injectable per call position or per collection.
type fakeClient struct {
	mu sync.Mutex

	pingErr    error
	loginOwner models.Owner
	loginErr   error

	access  string
	refresh string

	writes     []writeCall
	failWrites int // fail the next N WriteRecord calls
	failByColl map[string]error
	nextID     int

	presignCalls int
	presignFn    func(n int) (*client.UploadTarget, error)
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Register(ctx context.Context, username, password, email, displayName string) error {
	return nil
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (models.Owner, error) {
	if f.loginErr != nil {
		return models.Anonymous, f.loginErr
	}
	f.SetTokens("access-1", "refresh-1")
	return f.loginOwner, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) SetTokens(access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access, f.refresh = access, refresh
}

func (f *fakeClient) Tokens() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, f.refresh
}

func (f *fakeClient) WriteRecord(ctx context.Context, collection string, body []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrites > 0 {
		f.failWrites--
		return "", client.ErrUnavailable
	}
	if err := f.failByColl[collection]; err != nil {
		return "", err
	}

	f.nextID++
	f.writes = append(f.writes, writeCall{collection: collection, body: body})
	return fmt.Sprintf("cloud-%d", f.nextID), nil
}

func (f *fakeClient) PresignUpload(ctx context.Context) (*client.UploadTarget, error) {
	f.mu.Lock()
	n := f.presignCalls
	f.presignCalls++
	fn := f.presignFn
	f.mu.Unlock()

	if fn == nil {
		return nil, client.ErrUnavailable
	}
	return fn(n)
}

func (f *fakeClient) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeClient) writesTo(collection string) []writeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []writeCall
	for _, w := range f.writes {
		if w.collection == collection {
			out = append(out, w)
		}
	}
	return out
}
