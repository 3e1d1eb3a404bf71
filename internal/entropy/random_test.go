package entropy

import "testing"

func TestSeededDeterministic(t *testing.T) {
	a := NewSeeded(12345)
	b := NewSeeded(12345)

	for i := 0; i < 20; i++ {
		gotA := a.IntN(100000)
		gotB := b.IntN(100000)
		if gotA != gotB {
			t.Fatalf("expected deterministic sequence, mismatch at %d: %d != %d", i, gotA, gotB)
		}
	}
	if a.Seed() != 12345 {
		t.Fatalf("seed = %d, want 12345", a.Seed())
	}
}

func TestSeedWordChangesWithSalt(t *testing.T) {
	if seedWord(99, "a") == seedWord(99, "b") {
		t.Fatalf("expected different seed words for different salts")
	}
}

func TestCryptoRanges(t *testing.T) {
	var c Crypto
	for i := 0; i < 200; i++ {
		f := c.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("float out of range: %v", f)
		}
		n := c.IntN(7)
		if n < 0 || n >= 7 {
			t.Fatalf("int out of range: %d", n)
		}
	}
}

func TestIntFromFloatClampsTop(t *testing.T) {
	if got := intFromFloat(0.9999999999, 3); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if got := intFromFloat(0, 3); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestForSessionPrefersSeed(t *testing.T) {
	seed := int64(7)
	src := ForSession(&seed, NewClient("key"))
	if _, ok := src.(*Seeded); !ok {
		t.Fatalf("expected seeded source, got %T", src)
	}
	if _, ok := ForSession(nil, nil).(Crypto); !ok {
		t.Fatalf("expected crypto fallback without client")
	}
	if _, ok := ForSession(nil, NewClient("key")).(*Client); !ok {
		t.Fatalf("expected random.org client when configured")
	}
}

func TestNilClientFallsBack(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Fatalf("nil client must not be enabled")
	}
	f := c.Float64()
	if f < 0 || f >= 1 {
		t.Fatalf("fallback float out of range: %v", f)
	}
}

func TestResumeSeedOffsetsByTime(t *testing.T) {
	if ResumeSeed(nil, 40) != nil {
		t.Fatalf("a live session must stay unseeded")
	}
	seed := int64(7)
	got := ResumeSeed(&seed, 40)
	if got == nil || *got != 47 {
		t.Fatalf("resume seed = %v, want 47", got)
	}
	if seed != 7 {
		t.Fatalf("saved seed was modified: %d", seed)
	}
}
