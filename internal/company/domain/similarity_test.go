package domain

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corporation", "acme"},
		{"Acme, Inc.", "acme"},
		{"ACME INC", "acme"},
		{"@acme-io", "acme io"},
		{"Vercel GmbH", "vercel"},
		{"  Tailscale  ", "tailscale"},
		{"O'Reilly Media LLC", "oreilly media"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		min  float64
		max  float64
	}{
		{"identical after normalization", "Acme Inc", "acme", 1.0, 1.0},
		{"legal suffix ignored", "Vercel", "Vercel GmbH", 1.0, 1.0},
		{"containment", "acme cloud", "acme", 0.85, 0.85},
		{"token overlap", "acme cloud services", "cloud acme", 0.6, 0.7},
		{"unrelated", "acme", "initech", 0.0, 0.0},
		{"empty operand", "", "acme", 0.0, 0.0},
	}

	for _, tc := range tests {
		got := NameSimilarity(tc.a, tc.b)
		if got < tc.min || got > tc.max {
			t.Errorf("%s: NameSimilarity(%q, %q) = %v, want in [%v, %v]",
				tc.name, tc.a, tc.b, got, tc.min, tc.max)
		}
	}
}

func TestNameSimilaritySymmetric(t *testing.T) {
	a, b := "Acme Cloud Inc", "Cloud Acme"
	if NameSimilarity(a, b) != NameSimilarity(b, a) {
		t.Fatalf("similarity is not symmetric for %q / %q", a, b)
	}
}

func TestIsFreeEmailDomain(t *testing.T) {
	for _, dom := range []string{"gmail.com", "yahoo.com", "outlook.com", "Gmail.COM"} {
		if !IsFreeEmailDomain(dom) {
			t.Errorf("expected %q to be a free email domain", dom)
		}
	}
	for _, dom := range []string{"acme.io", "stripe.com", ""} {
		if IsFreeEmailDomain(dom) {
			t.Errorf("expected %q not to be a free email domain", dom)
		}
	}
}
