package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryAttemptStore is an in-process AttemptStore for tests
type memoryAttemptStore struct {
	counters map[string]int64
	values   map[string]time.Duration
}

func newMemoryAttemptStore() *memoryAttemptStore {
	return &memoryAttemptStore{counters: map[string]int64{}, values: map[string]time.Duration{}}
}

func (m *memoryAttemptStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.values[key]
	return ok, nil
}

func (m *memoryAttemptStore) TTL(_ context.Context, key string) (time.Duration, error) {
	return m.values[key], nil
}

func (m *memoryAttemptStore) Increment(_ context.Context, key string) (int64, error) {
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memoryAttemptStore) Expire(context.Context, string, time.Duration) error { return nil }

func (m *memoryAttemptStore) Set(_ context.Context, key string, _ interface{}, ttl time.Duration) error {
	m.values[key] = ttl
	return nil
}

func (m *memoryAttemptStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
		delete(m.counters, k)
	}
	return nil
}

func TestLockoutFor(t *testing.T) {
	assert.Equal(t, time.Duration(0), LockoutFor(4))
	assert.Equal(t, 2*time.Minute, LockoutFor(5))
	assert.Equal(t, time.Hour, LockoutFor(10))
	assert.Equal(t, 24*time.Hour, LockoutFor(25))
}

func TestBruteForceLocksAfterFiveFailures(t *testing.T) {
	store := newMemoryAttemptStore()
	bf := NewBruteForceProtection(store)

	app := fiber.New()
	app.Post("/login", bf.CheckAndRecordAttempt(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusUnauthorized)
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, bf.RecordFailedAttempt(context.Background(), "0.0.0.0"))
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "120", resp.Header.Get("Retry-After"))

	bf.RecordSuccessfulAttempt(context.Background(), "0.0.0.0")
	resp, err = app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestBruteForceNilStoreIsNoop(t *testing.T) {
	bf := NewBruteForceProtection(nil)
	assert.NoError(t, bf.RecordFailedAttempt(context.Background(), "1.2.3.4"))
}
