package token

import (
	"regexp"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	hexPattern := regexp.MustCompile(`^[a-f0-9]+$`)

	for _, byteLen := range []int{16, 32, 48} {
		tok, err := Generate(byteLen)
		if err != nil {
			t.Fatalf("Generate(%d): %v", byteLen, err)
		}
		if len(tok) != 2*byteLen {
			t.Errorf("Generate(%d) length = %d, want %d", byteLen, len(tok), 2*byteLen)
		}
		if !hexPattern.MatchString(tok) {
			t.Errorf("Generate(%d) produced non-hex output: %q", byteLen, tok)
		}
	}
}

func TestGenerateUniqueness(t *testing.T) {
	const n = 10000

	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		tok, err := Generate(DefaultLength)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token after %d generations: %s", i, tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestGenerateEntropy(t *testing.T) {
	// A 6400-character sample over 16 hex symbols should not be dominated
	// by a handful of characters.
	counts := make(map[byte]int)
	for i := 0; i < 100; i++ {
		tok, err := Generate(DefaultLength)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		for j := 0; j < len(tok); j++ {
			counts[tok[j]]++
		}
	}

	if len(counts) < 16 {
		t.Errorf("expected all 16 hex characters to appear, got %d", len(counts))
	}
	total := 100 * 2 * DefaultLength
	for c, n := range counts {
		// Expected share is 1/16; flag anything over 1/4.
		if n > total/4 {
			t.Errorf("character %q dominates output: %d of %d", c, n, total)
		}
	}
}

func TestValidFormat(t *testing.T) {
	valid, err := Generate(DefaultLength)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tests := []struct {
		name   string
		token  string
		length int
		want   bool
	}{
		{"generated token", valid, 64, true},
		{"empty", "", 64, false},
		{"too short", valid[:63], 64, false},
		{"too long", valid + "a", 64, false},
		{"uppercase hex", "ABCDEF" + valid[6:], 64, false},
		{"non-hex characters", "zz" + valid[2:], 64, false},
		{"whitespace", " " + valid[1:], 64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidFormat(tt.token, tt.length); got != tt.want {
				t.Errorf("ValidFormat(%q, %d) = %v, want %v", tt.token, tt.length, got, tt.want)
			}
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	raw, err := Generate(DefaultLength)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	h1 := Hash(raw)
	h2 := Hash(raw)
	if h1 != h2 {
		t.Error("hash of the same token differs between calls")
	}
	if h1 == raw {
		t.Error("hash must not equal the raw token")
	}
	if !ValidFormat(h1, 64) {
		t.Errorf("hash is not 64 hex characters: %q", h1)
	}
}
