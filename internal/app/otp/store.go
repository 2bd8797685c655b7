/*
Package otp implements the verification provider: generation, storage, and
dispatch of one-time codes.

This file defines the CodeStore, the Redis-backed record of in-flight codes.
Codes are stored bcrypt-hashed under their verification ID with a TTL; resend
tokens map back to the verification ID they belong to. Expiry is owned entirely
by Redis.
*/
package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeKeyPrefix   = "otp:code:"
	resendKeyPrefix = "otp:resend:"
	quotaKeyPrefix  = "otp:quota:"

	// DefaultCodeTTL is how long a dispatched code stays valid.
	DefaultCodeTTL = 5 * time.Minute

	// DefaultMaxAttempts is the number of failed checks before a code record
	// is invalidated.
	DefaultMaxAttempts = 3
)

var (
	// ErrCodeNotFound means no code record exists for the verification ID:
	// it expired, was consumed, or never existed.
	ErrCodeNotFound = errors.New("verification code not found or expired")

	// ErrCodeMismatch means the entered code does not match the record.
	ErrCodeMismatch = errors.New("verification code mismatch")

	// ErrTooManyAttempts means the record was invalidated after repeated
	// failed checks.
	ErrTooManyAttempts = errors.New("too many failed code attempts")

	// ErrResendNotFound means the resend token is unknown or expired.
	ErrResendNotFound = errors.New("resend token not found or expired")
)

// codeRecord is the JSON document stored per dispatched code.
type codeRecord struct {
	PhoneNumber string `json:"phone_number"`
	CodeHash    string `json:"code_hash"`
	Attempts    int    `json:"attempts"`
}

// CodeStore persists in-flight one-time codes in Redis.
type CodeStore struct {
	client      *redis.Client
	ttl         time.Duration
	maxAttempts int
}

// NewCodeStore builds a CodeStore. Zero values select DefaultCodeTTL and
// DefaultMaxAttempts.
func NewCodeStore(client *redis.Client, ttl time.Duration, maxAttempts int) *CodeStore {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &CodeStore{client: client, ttl: ttl, maxAttempts: maxAttempts}
}

// Create stores a new bcrypt-hashed code record under verificationID.
func (s *CodeStore) Create(ctx context.Context, verificationID, phoneNumber, code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash verification code: %w", err)
	}

	return s.write(ctx, verificationID, codeRecord{
		PhoneNumber: phoneNumber,
		CodeHash:    string(hash),
	}, s.ttl)
}

// Check compares code against the record for verificationID. On a match the
// record is consumed and the phone number it proves is returned. A mismatch
// increments the attempt counter; once the ceiling is hit the record is
// deleted and ErrTooManyAttempts returned.
func (s *CodeStore) Check(ctx context.Context, verificationID, code string) (string, error) {
	key := codeKeyPrefix + verificationID

	rec, err := s.read(ctx, key)
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)) != nil {
		rec.Attempts++
		if rec.Attempts >= s.maxAttempts {
			s.client.Del(ctx, key)
			return "", ErrTooManyAttempts
		}

		// Preserve the remaining TTL; a failed attempt must not extend the
		// code's lifetime.
		remaining, terr := s.client.TTL(ctx, key).Result()
		if terr != nil || remaining <= 0 {
			remaining = s.ttl
		}
		if werr := s.write(ctx, verificationID, *rec, remaining); werr != nil {
			return "", werr
		}
		return "", ErrCodeMismatch
	}

	// Consume on success so the code cannot be replayed.
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return "", fmt.Errorf("failed to consume verification code: %w", err)
	}
	return rec.PhoneNumber, nil
}

// Rotate replaces the code for verificationID with newCode, resetting the
// attempt counter and TTL. Returns the phone number the record belongs to.
// Used by resend: the original plaintext is unrecoverable from its hash.
func (s *CodeStore) Rotate(ctx context.Context, verificationID, newCode string) (string, error) {
	key := codeKeyPrefix + verificationID

	rec, err := s.read(ctx, key)
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newCode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash verification code: %w", err)
	}

	if err := s.write(ctx, verificationID, codeRecord{
		PhoneNumber: rec.PhoneNumber,
		CodeHash:    string(hash),
	}, s.ttl); err != nil {
		return "", err
	}
	return rec.PhoneNumber, nil
}

// SaveResendToken maps token to verificationID for the code's lifetime.
func (s *CodeStore) SaveResendToken(ctx context.Context, token, verificationID string) error {
	if err := s.client.Set(ctx, resendKeyPrefix+token, verificationID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store resend token: %w", err)
	}
	return nil
}

// ResolveResendToken returns the verification ID a resend token belongs to.
func (s *CodeStore) ResolveResendToken(ctx context.Context, token string) (string, error) {
	verificationID, err := s.client.Get(ctx, resendKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrResendNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve resend token: %w", err)
	}
	return verificationID, nil
}

// CountDispatch increments the per-phone dispatch counter for the quota
// window and returns the new count. The counter expires with the window.
func (s *CodeStore) CountDispatch(ctx context.Context, phoneNumber string, window time.Duration) (int64, error) {
	key := quotaKeyPrefix + phoneNumber

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count dispatch: %w", err)
	}
	if count == 1 {
		s.client.Expire(ctx, key, window)
	}
	return count, nil
}

func (s *CodeStore) write(ctx context.Context, verificationID string, rec codeRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode code record: %w", err)
	}

	if err := s.client.Set(ctx, codeKeyPrefix+verificationID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store code record: %w", err)
	}
	return nil
}

func (s *CodeStore) read(ctx context.Context, key string) (*codeRecord, error) {
	payload, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load code record: %w", err)
	}

	var rec codeRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode code record: %w", err)
	}
	return &rec, nil
}
