package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestGetHonoursTTLBoundary(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[[]string]("test", time.Hour, clk.now)
	c.Put("k", []string{"a"})

	clk.t = clk.t.Add(59 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected hit before ttl")
	}

	clk.t = clk.t.Add(time.Minute) // elapsed == ttl
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss at elapsed == ttl")
	}
	if c.Len() != 1 {
		t.Fatalf("stale entry should not be evicted on read")
	}

	c.Put("k", []string{"b"})
	v, ok := c.Get("k")
	if !ok || v[0] != "b" {
		t.Fatalf("put did not supersede stale entry: %v %v", v, ok)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New[int]("test", time.Hour, nil)
	c.Put(Key("acme", nil, "true"), 1)
	c.Put(Key("acme", []string{"pm"}, "false"), 2)
	c.Put(Key("globex", nil, "true"), 3)

	if n := c.Invalidate("acme"); n != 2 {
		t.Fatalf("Invalidate removed %d, want 2", n)
	}
	if _, ok := c.Get(Key("globex", nil, "true")); !ok {
		t.Fatalf("unrelated key dropped")
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Fatalf("InvalidateAll left %d entries", c.Len())
	}
}

func TestKeyIsOrderInsensitive(t *testing.T) {
	a := Key("board", []string{"Product", "Engineer"}, "true")
	b := Key("board", []string{"Engineer", "Product"}, "true")
	if a != b {
		t.Fatalf("%q != %q", a, b)
	}
	if a != "board_Engineer_Product_true" {
		t.Fatalf("Key = %q", a)
	}
	if got := Key("board", nil, "false"); got != "board__false" {
		t.Fatalf("empty keywords key = %q", got)
	}
	if Key("board", []string{"x"}, "true") == Key("board", []string{"x"}, "false") {
		t.Fatalf("mode flag must change key")
	}
}

func TestKeyDoesNotMutateInput(t *testing.T) {
	kw := []string{"z", "a"}
	_ = Key("s", kw, "m")
	if kw[0] != "z" {
		t.Fatalf("Key sorted caller's slice")
	}
}
