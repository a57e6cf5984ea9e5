package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/usersearch/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type mockStore struct {
	values    map[string][]byte
	incrs     map[string]int64
	expires   []expireCall
	getErr    error
	incrErr   error
	expireErr error
}

func newMockStore() *mockStore {
	return &mockStore{values: map[string][]byte{}, incrs: map[string]int64{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.incrs[key] += val
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireErr != nil {
		return m.expireErr
	}
	m.expires = append(m.expires, expireCall{key: key, ttl: ttl, nx: nx})
	return nil
}

func TestIncrBy_SetsTTLByPeriod(t *testing.T) {
	ms := newMockStore()
	s := New(ms, time.Hour, 2*time.Hour)

	ctx := context.Background()
	if err := s.IncrBy(ctx, "usersearch:budget:openai:daily:2026-05-10", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.IncrBy(ctx, "usersearch:budget:openai:monthly:2026-05", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []expireCall{
		{key: "usersearch:budget:openai:daily:2026-05-10", ttl: time.Hour, nx: true},
		{key: "usersearch:budget:openai:monthly:2026-05", ttl: 2 * time.Hour, nx: true},
	}
	if len(ms.expires) != len(want) {
		t.Fatalf("expected %d expire calls, got %d", len(want), len(ms.expires))
	}
	for i := range want {
		if ms.expires[i] != want[i] {
			t.Errorf("expire[%d] = %+v, want %+v", i, ms.expires[i], want[i])
		}
	}
}

func TestIncrBy_Errors(t *testing.T) {
	ms := newMockStore()
	ms.incrErr = errors.New("down")
	if err := New(ms, 0, 0).IncrBy(context.Background(), "k", 1); err == nil {
		t.Error("expected incr error")
	}

	ms = newMockStore()
	ms.expireErr = errors.New("down")
	if err := New(ms, 0, 0).IncrBy(context.Background(), "k", 1); err == nil {
		t.Error("expected expire error")
	}
}

func TestGet(t *testing.T) {
	ms := newMockStore()
	ms.values["present"] = []byte("1234")
	ms.values["garbage"] = []byte("abc")
	s := New(ms, 0, 0)
	ctx := context.Background()

	if v, err := s.Get(ctx, "present"); err != nil || v != 1234 {
		t.Errorf("Get(present) = %d, %v", v, err)
	}
	if v, err := s.Get(ctx, "missing"); err != nil || v != 0 {
		t.Errorf("Get(missing) = %d, %v; want 0, nil", v, err)
	}
	if _, err := s.Get(ctx, "garbage"); err == nil {
		t.Error("expected parse error")
	}

	ms.getErr = errors.New("down")
	if _, err := s.Get(ctx, "present"); err == nil {
		t.Error("expected store error")
	}
}

func TestNew_DefaultTTLs(t *testing.T) {
	s := New(newMockStore(), 0, 0)
	if s.dailyTTL != DefaultDailyTTL || s.monthlyTTL != DefaultMonthlyTTL {
		t.Errorf("defaults not applied: %v %v", s.dailyTTL, s.monthlyTTL)
	}
}
