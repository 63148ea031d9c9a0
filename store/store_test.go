package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/vango-dev/optimistic"
)

var errBackend = errors.New("backend rejected update")

func TestNewStartsResolved(t *testing.T) {
	s := New(5)

	if s.IsPending() {
		t.Error("New() store is pending")
	}
	if got := s.Current(); got != 5 {
		t.Errorf("Current() = %d, want 5", got)
	}
	if !s.Get().IsResolved() {
		t.Error("Get() container is not resolved")
	}
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name        string
		apply       func(*Store[int]) optimistic.Value[int]
		want        int
		wantPending bool
	}{
		{
			name:        "push",
			apply:       func(s *Store[int]) optimistic.Value[int] { return s.Push(2) },
			want:        2,
			wantPending: true,
		},
		{
			name: "update applies to baseline",
			apply: func(s *Store[int]) optimistic.Value[int] {
				s.Push(99)
				return s.Update(func(n int) int { return n + 1 })
			},
			want:        2,
			wantPending: true,
		},
		{
			name: "force commits",
			apply: func(s *Store[int]) optimistic.Value[int] {
				s.Push(2)
				return s.Force()
			},
			want: 2,
		},
		{
			name: "revert rolls back",
			apply: func(s *Store[int]) optimistic.Value[int] {
				s.Push(2)
				return s.Revert()
			},
			want: 1,
		},
		{
			name: "resolve success replaces",
			apply: func(s *Store[int]) optimistic.Value[int] {
				s.Push(2)
				return s.Resolve(7, nil)
			},
			want: 7,
		},
		{
			name: "resolve failure reverts",
			apply: func(s *Store[int]) optimistic.Value[int] {
				s.Push(2)
				return s.Resolve(0, errBackend)
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(1)
			got := tt.apply(s)

			if got.Unwrap() != tt.want {
				t.Errorf("returned Unwrap() = %d, want %d", got.Unwrap(), tt.want)
			}
			if got.IsPending() != tt.wantPending {
				t.Errorf("returned IsPending() = %v, want %v", got.IsPending(), tt.wantPending)
			}
			if s.Current() != tt.want {
				t.Errorf("Current() = %d, want %d", s.Current(), tt.want)
			}
			if s.IsPending() != tt.wantPending {
				t.Errorf("IsPending() = %v, want %v", s.IsPending(), tt.wantPending)
			}
		})
	}
}

func TestTry(t *testing.T) {
	prepend := func(list []string, item string) []string {
		return append([]string{item}, list...)
	}

	t.Run("success combines against the baseline", func(t *testing.T) {
		s := New([]string{})
		s.Update(func(list []string) []string { return prepend(list, "A") })

		got := Try(s, "B", nil, prepend)
		if len(got.Unwrap()) != 1 || got.Unwrap()[0] != "B" {
			t.Errorf("Unwrap() = %v, want [B]", got.Unwrap())
		}
	})

	t.Run("failure reverts", func(t *testing.T) {
		s := New([]string{})
		s.Update(func(list []string) []string { return prepend(list, "A") })

		got := Try(s, "B", errBackend, prepend)
		if len(got.Unwrap()) != 0 {
			t.Errorf("Unwrap() = %v, want empty", got.Unwrap())
		}
	})
}

func TestSubscribe(t *testing.T) {
	s := New(1)

	var mu sync.Mutex
	var seen []int
	unsubscribe := s.Subscribe(func(v optimistic.Value[int]) {
		mu.Lock()
		seen = append(seen, v.Unwrap())
		mu.Unlock()
	})

	s.Push(2)
	s.Push(3)
	s.Revert()

	mu.Lock()
	got := append([]int(nil), seen...)
	mu.Unlock()

	want := []int{2, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("subscriber saw %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("subscriber saw %v, want %v", got, want)
			break
		}
	}

	unsubscribe()
	s.Push(9)

	mu.Lock()
	n := len(seen)
	mu.Unlock()
	if n != len(want) {
		t.Errorf("subscriber notified after unsubscribe, saw %d events, want %d", n, len(want))
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	s := New(1)
	unsubscribe := s.Subscribe(func(optimistic.Value[int]) {})
	unsubscribe()
	unsubscribe() // must not panic
	s.Push(2)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []struct {
		op      Op
		pending bool
	}
}

func (r *recordingObserver) Transition(op Op, pending bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, struct {
		op      Op
		pending bool
	}{op, pending})
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	s := New(1, WithObserver(obs))

	s.Push(2)
	s.Resolve(0, errBackend)
	s.Push(3)
	s.Resolve(3, nil)
	s.Update(func(n int) int { return n + 1 })
	s.Force()
	s.Push(5)
	s.Revert()

	want := []struct {
		op      Op
		pending bool
	}{
		{OpPush, true},
		{OpReject, false},
		{OpPush, true},
		{OpResolve, false},
		{OpUpdate, true},
		{OpForce, false},
		{OpPush, true},
		{OpRevert, false},
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.events) != len(want) {
		t.Fatalf("observer saw %d events, want %d", len(obs.events), len(want))
	}
	for i, w := range want {
		if obs.events[i] != w {
			t.Errorf("event[%d] = %+v, want %+v", i, obs.events[i], w)
		}
	}
}

func TestConcurrentTransitions(t *testing.T) {
	s := New(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Push(n)
			s.Resolve(n, nil)
		}(i)
	}
	wg.Wait()

	// Every goroutine's last write resolved, so the store must end up
	// resolved at one of the written values.
	if s.IsPending() {
		t.Error("store still pending after all transitions resolved")
	}
	got := s.Current()
	if got < 0 || got >= 50 {
		t.Errorf("Current() = %d, want a value written by some goroutine", got)
	}
}
