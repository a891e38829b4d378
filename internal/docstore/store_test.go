package docstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"device-relay-bot/internal/domain"
	apperrors "device-relay-bot/internal/errors"
)

// fakeRemote keeps the object in memory and fails any get or put that
// overlaps another in-flight operation, so the store's mutual exclusion is
// observable.
type fakeRemote struct {
	mu       sync.Mutex
	data     []byte
	getErr   error
	putErr   error
	inFlight atomic.Bool
	overlap  atomic.Bool
}

func (r *fakeRemote) enter() {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.overlap.Store(true)
	}
}

func (r *fakeRemote) leave() {
	r.inFlight.Store(false)
}

func (r *fakeRemote) get(ctx context.Context) ([]byte, error) {
	r.enter()
	defer r.leave()

	if r.getErr != nil {
		return nil, r.getErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.data...), nil
}

func (r *fakeRemote) put(ctx context.Context, data []byte) error {
	r.enter()
	defer r.leave()

	if r.putErr != nil {
		return r.putErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append([]byte(nil), data...)
	return nil
}

func testStore(r remote) *DocumentStore {
	return newDocumentStore(r, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReadMissingObjectReturnsEmptyDocument(t *testing.T) {
	store := testStore(&fakeRemote{})

	doc, err := store.Read(context.Background())
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Empty(t, doc.Users)
	require.NotNil(t, doc.Users)
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := testStore(&fakeRemote{})
	ctx := context.Background()

	original := &domain.Document{
		Users: []*domain.User{
			{
				UserID:   "u-1",
				Nickname: "alice",
				Binding: &domain.Binding{
					ActivationID: "code-1",
					Status:       domain.StatusPending,
				},
			},
			{
				UserID:   "u-2",
				Nickname: "bob",
				Binding: &domain.Binding{
					Status:   domain.StatusActive,
					ChatID:   42,
					Username: "bob_tg",
				},
			},
		},
	}

	require.NoError(t, store.Write(ctx, original))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, original, got)
}

func TestReadTransportErrorBecomesStorageFailure(t *testing.T) {
	store := testStore(&fakeRemote{getErr: errors.New("connection refused")})

	doc, err := store.Read(context.Background())
	require.Nil(t, doc)
	require.Equal(t, "E200", apperrors.CodeOf(err))
}

func TestWriteTransportErrorBecomesStorageFailure(t *testing.T) {
	store := testStore(&fakeRemote{putErr: errors.New("connection refused")})

	err := store.Write(context.Background(), domain.NewDocument())
	require.Equal(t, "E200", apperrors.CodeOf(err))
}

func TestReadCorruptDocumentBecomesStorageFailure(t *testing.T) {
	store := testStore(&fakeRemote{data: []byte("{not json")})

	doc, err := store.Read(context.Background())
	require.Nil(t, doc)
	require.Equal(t, "E200", apperrors.CodeOf(err))
}

// TestConcurrentWritesSerialize runs N whole-document writes and
// interleaved reads concurrently and checks that no remote operation ever
// overlapped another, and that the final document is exactly one of the N
// written documents rather than an interleaved mix.
func TestConcurrentWritesSerialize(t *testing.T) {
	remote := &fakeRemote{}
	store := testStore(remote)
	ctx := context.Background()

	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			doc := &domain.Document{Users: []*domain.User{{
				UserID: "u-" + strconv.Itoa(i),
				Binding: &domain.Binding{
					Status: domain.StatusActive,
					ChatID: int64(i + 1),
				},
			}}}
			if err := store.Write(ctx, doc); err != nil {
				t.Error(err)
			}

			if _, err := store.Read(ctx); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	require.False(t, remote.overlap.Load(), "remote operations must never overlap")

	final, err := store.Read(ctx)
	require.NoError(t, err)
	require.Len(t, final.Users, 1, "final document must be one writer's document, not a mix")
	require.Regexp(t, `^u-\d+$`, final.Users[0].UserID)
	require.EqualValues(t, final.Users[0].Binding.ChatID-1, mustAtoi(t, final.Users[0].UserID[2:]),
		"user id and chat id must come from the same write")
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()

	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
