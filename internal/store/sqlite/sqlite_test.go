package sqlite

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/vovakirdan/palchat-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", ApplySchema)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var entries []*store.AuditEntry
	for i := range 5 {
		channel := "general"
		if i%2 == 1 {
			channel = "random"
		}
		entries = append(entries, &store.AuditEntry{
			ID:         "e" + strconv.Itoa(i),
			ConnKey:    "conn",
			Event:      "okay",
			Command:    "msg",
			Actor:      "User" + strconv.Itoa(i%2),
			Channel:    channel,
			Recipients: i,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		})
	}
	if err := s.SaveEntries(ctx, entries); err != nil {
		t.Fatalf("SaveEntries failed: %v", err)
	}

	tests := []struct {
		name     string
		filter   store.AuditFilter
		expected []string
	}{
		{
			name:     "all entries",
			filter:   store.AuditFilter{},
			expected: []string{"e0", "e1", "e2", "e3", "e4"},
		},
		{
			name:     "newest two in chronological order",
			filter:   store.AuditFilter{Limit: 2},
			expected: []string{"e3", "e4"},
		},
		{
			name:     "by channel",
			filter:   store.AuditFilter{Channel: "random"},
			expected: []string{"e1", "e3"},
		},
		{
			name:     "by actor and channel",
			filter:   store.AuditFilter{Channel: "general", Actor: "User0"},
			expected: []string{"e0", "e2", "e4"},
		},
		{
			name:     "no match",
			filter:   store.AuditFilter{Actor: "ghost"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.ListEntries(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEntries failed: %v", err)
			}
			if len(results) != len(tt.expected) {
				t.Fatalf("expected %d results, got %d", len(tt.expected), len(results))
			}
			for i, e := range results {
				if e.ID != tt.expected[i] {
					t.Errorf("expected %s at index %d, got %s", tt.expected[i], i, e.ID)
				}
			}
		})
	}
}

func TestEntryFieldsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	in := &store.AuditEntry{
		ID:         "kick-1",
		ConnKey:    "abc",
		Event:      "okay",
		Command:    "kick",
		Actor:      "alice",
		Channel:    "c",
		Target:     "bob",
		Recipients: 2,
		CreatedAt:  at,
	}
	if err := s.SaveEntries(ctx, []*store.AuditEntry{in}); err != nil {
		t.Fatalf("SaveEntries failed: %v", err)
	}

	out, err := s.ListEntries(ctx, store.AuditFilter{Limit: 1})
	if err != nil || len(out) != 1 {
		t.Fatalf("ListEntries = %v, %v", out, err)
	}
	got := out[0]
	if got.Target != "bob" || got.Command != "kick" || got.Recipients != 2 || !got.CreatedAt.Equal(at) {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestDuplicateIDRollsBackBatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []*store.AuditEntry{
		{ID: "dup", ConnKey: "c", Event: "connected", CreatedAt: time.Now()},
		{ID: "dup", ConnKey: "c", Event: "connected", CreatedAt: time.Now()},
	}
	if err := s.SaveEntries(ctx, batch); err == nil {
		t.Fatal("expected unique constraint error")
	}

	out, err := s.ListEntries(ctx, store.AuditFilter{})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected rolled back batch, got %d entries", len(out))
	}
}
