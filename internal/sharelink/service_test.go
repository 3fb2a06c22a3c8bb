package sharelink

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(opts Options) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.sharespace.media"
	}
	return NewService(store, opts), store
}

func TestIssueAndConsumeRoundTrip(t *testing.T) {
	svc, _ := newTestService(Options{})
	ctx := context.Background()

	payload := "data:text/plain;base64,aGVsbG8="
	token, url, err := svc.Issue(ctx, payload, "hello.txt")
	require.NoError(t, err)
	require.NotEmpty(t, token.ID)
	assert.Equal(t, "https://www.sharespace.media/s/"+token.ID, url)

	got, err := svc.Consume(ctx, token.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, got.Payload)
	assert.Equal(t, "hello.txt", got.FileName)
}

func TestConsumeIsSingleUse(t *testing.T) {
	svc, store := newTestService(Options{})
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "data:text/plain;base64,aGVsbG8=", "hello.txt")
	require.NoError(t, err)

	_, err = svc.Consume(ctx, token.ID)
	require.NoError(t, err)

	// Every subsequent consume fails identically
	for i := 0; i < 3; i++ {
		_, err = svc.Consume(ctx, token.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 0, store.Len())
}

func TestConsumeUnknownID(t *testing.T) {
	svc, store := newTestService(Options{})

	_, err := svc.Consume(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len(), "a miss must not mutate the store")

	_, err = svc.Consume(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsumeNoCrossTalk(t *testing.T) {
	svc, _ := newTestService(Options{})
	ctx := context.Background()

	tokenA, _, err := svc.Issue(ctx, "data:text/plain;base64,QQ==", "a.txt")
	require.NoError(t, err)
	tokenB, _, err := svc.Issue(ctx, "data:text/plain;base64,Qg==", "b.txt")
	require.NoError(t, err)

	gotB, err := svc.Consume(ctx, tokenB.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain;base64,Qg==", gotB.Payload)
	assert.Equal(t, "b.txt", gotB.FileName)

	gotA, err := svc.Consume(ctx, tokenA.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain;base64,QQ==", gotA.Payload)
}

func TestConcurrentConsumeExactlyOneSuccess(t *testing.T) {
	svc, _ := newTestService(Options{})
	ctx := context.Background()

	const workers = 50

	token, _, err := svc.Issue(ctx, "data:text/plain;base64,aGVsbG8=", "hello.txt")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, workers)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Consume(ctx, token.ID)
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	successes, misses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case err == ErrNotFound:
			misses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one consumer may win")
	assert.Equal(t, workers-1, misses)
}

func TestIssueRejectsMalformedPayloads(t *testing.T) {
	svc, store := newTestService(Options{})
	ctx := context.Background()

	cases := []string{
		"",
		"hello world",
		"data:",
		"data:text/plain,aGVsbG8=",          // not base64-flagged
		"data:text/plain;base64",            // no comma
		"data:;base64,aGVsbG8=",             // empty mime type
		"data:textplain;base64,aGVsbG8=",    // mime without subtype
		"data:text/plain;base64,!!!not-b64", // undecodable body
	}
	for _, payload := range cases {
		_, _, err := svc.Issue(ctx, payload, "f.txt")
		assert.ErrorIs(t, err, ErrInvalidPayload, "payload %q", payload)
	}
	assert.Equal(t, 0, store.Len(), "rejected payloads must not be persisted")
}

func TestIssueEnforcesMaxPayload(t *testing.T) {
	svc, _ := newTestService(Options{MaxPayloadBytes: 10})

	_, _, err := svc.Issue(context.Background(), "data:text/plain;base64,aGVsbG8=", "f.txt")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestConsumeHonorsTTL(t *testing.T) {
	svc, store := newTestService(Options{TTL: time.Hour})
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, "data:text/plain;base64,aGVsbG8=", "hello.txt")
	require.NoError(t, err)

	// Fresh token is served
	svc.now = func() time.Time { return token.CreatedAt.Add(30 * time.Minute) }
	got, err := svc.Consume(ctx, token.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", got.FileName)

	// Reissue, then age past the TTL
	token, _, err = svc.Issue(ctx, "data:text/plain;base64,aGVsbG8=", "hello.txt")
	require.NoError(t, err)
	svc.now = func() time.Time { return token.CreatedAt.Add(2 * time.Hour) }

	_, err = svc.Consume(ctx, token.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len(), "expired token is removed on read")
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	svc, store := newTestService(Options{TTL: time.Hour})
	ctx := context.Background()

	old := Token{ID: NewID(), Payload: "data:text/plain;base64,QQ==", CreatedAt: time.Now().UTC().Add(-2 * time.Hour)}
	fresh := Token{ID: NewID(), Payload: "data:text/plain;base64,Qg==", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Put(ctx, old))
	require.NoError(t, store.Put(ctx, fresh))

	n, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, store.Len())

	_, err = svc.Consume(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestSweepDisabledWithoutTTL(t *testing.T) {
	svc, store := newTestService(Options{})
	ctx := context.Background()

	old := Token{ID: NewID(), Payload: "data:text/plain;base64,QQ==", CreatedAt: time.Now().UTC().Add(-240 * time.Hour)}
	require.NoError(t, store.Put(ctx, old))

	n, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, store.Len(), "tokens live forever without a TTL")
}

func TestNewIDProperties(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.Len(t, id, 22) // 16 bytes, base64url, no padding
		assert.False(t, strings.ContainsAny(id, "+/="), "id must be URL-safe")
		assert.False(t, seen[id], "ids must not repeat")
		seen[id] = true
	}
}
