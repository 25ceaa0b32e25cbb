package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrInvalidCredentials_MatchesWrapped(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrInvalidCredentials)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("expected wrapped error to match ErrInvalidCredentials")
	}
	if SafeCode(err) != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", SafeCode(err))
	}
	if SafeMessage(err) != "Invalid credentials" {
		t.Errorf("unexpected message %q", SafeMessage(err))
	}
}

func TestIs_DifferentTypesDoNotMatch(t *testing.T) {
	if errors.Is(NewUnauthorized("nope"), ErrInvalidCredentials) {
		t.Error("unauthorized must not match invalid credentials")
	}
}

func TestSafeMessage_HidesInternalErrors(t *testing.T) {
	err := errors.New("redis: connection refused")
	if got := SafeMessage(err); got != "an unexpected error occurred" {
		t.Errorf("expected generic message, got %q", got)
	}
	if got := SafeCode(err); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got)
	}

	wrapped := NewInternal(err)
	if !errors.Is(wrapped, err) {
		t.Error("expected Unwrap to expose internal error")
	}
}

func TestNewRateLimited(t *testing.T) {
	err := NewRateLimited("slow down")
	if err.Code != http.StatusTooManyRequests || err.Type != "rate_limited" {
		t.Errorf("unexpected error %+v", err)
	}
	if !errors.Is(fmt.Errorf("login: %w", err), NewRateLimited("other text")) {
		t.Error("expected rate-limited errors to match regardless of message")
	}
}
