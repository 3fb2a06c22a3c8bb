// Package sharelink implements one-time, self-destructing share links.
//
// A link wraps a bearer token: whoever holds the URL can retrieve the
// payload, exactly once. Retrieval is destructive - the record is removed
// atomically with the read, so concurrent consumers of the same id see
// exactly one success.
package sharelink

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound covers tokens that were never issued, were already
	// consumed, or expired. Callers cannot tell which.
	ErrNotFound = errors.New("share link not found or already used")

	// ErrInvalidPayload is returned when the payload is not a
	// well-formed base64 data URI.
	ErrInvalidPayload = errors.New("payload is not a valid data URI")

	// ErrPayloadTooLarge is returned when the payload exceeds the
	// configured maximum.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
)

// Token is a one-time share record. Immutable after issuance; deleted by
// the first successful retrieval.
type Token struct {
	ID        string    `json:"id"`
	Payload   string    `json:"payload"` // data:<mime>;base64,<body>
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists share tokens. GetAndDelete must be atomic per id:
// of any number of concurrent calls for the same id, exactly one may
// receive the token and all others must get ErrNotFound.
type Store interface {
	Put(ctx context.Context, t Token) error
	GetAndDelete(ctx context.Context, id string) (Token, error)

	// DeleteOlderThan removes tokens created before cutoff and returns
	// how many were removed. Stores with native expiry may return 0.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// NewID returns a fresh unguessable token id: 128 bits from the
// platform CSPRNG, base64url without padding (22 characters).
func NewID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// ValidateDataURI checks that payload has the shape
// data:<mimetype>;base64,<data> with a decodable base64 body.
func ValidateDataURI(payload string) error {
	rest, ok := strings.CutPrefix(payload, "data:")
	if !ok {
		return ErrInvalidPayload
	}
	mediaType, body, ok := strings.Cut(rest, ",")
	if !ok {
		return ErrInvalidPayload
	}
	if !strings.HasSuffix(mediaType, ";base64") {
		return ErrInvalidPayload
	}
	mimeType := strings.TrimSuffix(mediaType, ";base64")
	if mimeType == "" || !strings.Contains(mimeType, "/") {
		return ErrInvalidPayload
	}
	if _, err := base64.StdEncoding.DecodeString(body); err != nil {
		return ErrInvalidPayload
	}
	return nil
}
