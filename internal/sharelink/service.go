package sharelink

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Options configures a share link service
type Options struct {
	// BaseURL is the externally visible origin embedded in share URLs
	BaseURL string

	// TTL bounds how long an unconsumed token lives. Zero means tokens
	// live until consumed.
	TTL time.Duration

	// MaxPayloadBytes caps the encoded payload size. Zero disables the cap.
	MaxPayloadBytes int64
}

// Service issues and consumes one-time share links
type Service struct {
	store      Store
	baseURL    string
	ttl        time.Duration
	maxPayload int64
	now        func() time.Time
}

// NewService creates a share link service on top of a Store
func NewService(store Store, opts Options) *Service {
	return &Service{
		store:      store,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		ttl:        opts.TTL,
		maxPayload: opts.MaxPayloadBytes,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Issue validates the payload, generates an unguessable id, persists the
// token and returns it together with the public share URL.
func (s *Service) Issue(ctx context.Context, payload, fileName string) (Token, string, error) {
	if s.maxPayload > 0 && int64(len(payload)) > s.maxPayload {
		return Token{}, "", ErrPayloadTooLarge
	}
	if err := ValidateDataURI(payload); err != nil {
		return Token{}, "", err
	}

	t := Token{
		ID:        NewID(),
		Payload:   payload,
		FileName:  fileName,
		CreatedAt: s.now(),
	}

	if err := s.store.Put(ctx, t); err != nil {
		return Token{}, "", fmt.Errorf("failed to persist share token: %w", err)
	}

	return t, s.ShareURL(t.ID), nil
}

// Consume retrieves a token exactly once. The read and the delete are a
// single atomic step in the store, so a second Consume for the same id
// always returns ErrNotFound - as does an id that was never issued or,
// with a TTL configured, a token that outlived it.
func (s *Service) Consume(ctx context.Context, id string) (Token, error) {
	if id == "" {
		return Token{}, ErrNotFound
	}

	t, err := s.store.GetAndDelete(ctx, id)
	if err != nil {
		return Token{}, err
	}

	// Lazy expiry: the record is already gone, which is where an
	// expired token belongs anyway.
	if s.ttl > 0 && s.now().Sub(t.CreatedAt) > s.ttl {
		return Token{}, ErrNotFound
	}

	return t, nil
}

// Sweep removes unconsumed tokens older than the TTL. With no TTL
// configured it does nothing.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	return s.store.DeleteOlderThan(ctx, s.now().Add(-s.ttl))
}

// ShareURL builds the public one-time link for a token id
func (s *Service) ShareURL(id string) string {
	return fmt.Sprintf("%s/s/%s", s.baseURL, id)
}

// TTL returns the configured time-to-live (zero when disabled)
func (s *Service) TTL() time.Duration {
	return s.ttl
}
