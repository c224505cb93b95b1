package cache

import (
	"errors"
	"testing"
)

func TestGetOrInsertWith_CreatesOnce(t *testing.T) {
	c := New[string, int]()
	calls := 0
	factory := func(k string) (int, error) {
		calls++
		return len(k), nil
	}

	v, err := c.GetOrInsertWith("merchant", factory)
	if err != nil || v != 8 {
		t.Fatalf("first lookup = %d, %v", v, err)
	}
	v, err = c.GetOrInsertWith("merchant", factory)
	if err != nil || v != 8 {
		t.Fatalf("second lookup = %d, %v", v, err)
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
}

func TestGetOrInsertWith_FactoryError(t *testing.T) {
	c := New[string, int]()
	boom := errors.New("unknown id")

	_, err := c.GetOrInsertWith("x", func(string) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}
	if _, ok := c.Get("x"); ok {
		t.Error("failed factory must not insert")
	}
}

func TestCache_InsertionOrder(t *testing.T) {
	c := New[string, int]()
	c.Insert("b", 2)
	c.Insert("a", 1)
	c.Insert("b", 3)

	keys := c.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("keys = %v, want [b a]", keys)
	}
	var seen []int
	c.Each(func(_ string, v int) { seen = append(seen, v) })
	if seen[0] != 3 || seen[1] != 1 {
		t.Errorf("values = %v, want [3 1]", seen)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}
