package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt. Each hash
// embeds a fresh random salt, so two hashes of the same password never
// match bit-for-bit.
//
// bcrypt is CPU-bound, so calls run through a bounded slot pool: a
// burst of register/login requests queues for a slot instead of
// saturating every scheduler thread and stalling unrelated traffic.
type PasswordHasher struct {
	cost  int
	slots chan struct{}
}

// NewPasswordHasher creates a PasswordHasher with the given bcrypt cost
// and at most workers concurrent hashing operations.
func NewPasswordHasher(cost, workers int) *PasswordHasher {
	if workers < 1 {
		workers = 1
	}
	return &PasswordHasher{
		cost:  cost,
		slots: make(chan struct{}, workers),
	}
}

func (h *PasswordHasher) acquire(ctx context.Context) error {
	select {
	case h.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PasswordHasher) release() {
	<-h.slots
}

// Hash produces a salted bcrypt digest of the password.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether the password matches the stored digest. A
// mismatch is not an error; errors are reserved for malformed digests
// and cancelled contexts.
func (h *PasswordHasher) Verify(ctx context.Context, password, digest string) (bool, error) {
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
