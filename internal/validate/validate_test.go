package validate

import (
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"user@example.com", "user@example.com", true},
		{"  User@Example.COM ", "user@example.com", true},
		{"a+b.c_d@sub.example.org", "a+b.c_d@sub.example.org", true},
		{"no-at-sign", "", false},
		{"@example.com", "", false},
		{"user@", "", false},
		{"user@example", "", false},
		{"", "", false},
		{strings.Repeat("a", 95) + "@ex.com", "", false}, // over 100 chars
	}
	for _, tc := range cases {
		got, ok := Email(tc.in)
		if ok != tc.ok {
			t.Errorf("Email(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Errorf("Email(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestName(t *testing.T) {
	if _, ok := Name("  Ana  "); !ok {
		t.Error("trimmed two-letter name should pass")
	}
	if got, _ := Name("  Ana  "); got != "Ana" {
		t.Errorf("Name did not trim: %q", got)
	}
	if _, ok := Name("x"); ok {
		t.Error("single letter should fail")
	}
	if _, ok := Name(strings.Repeat("n", 61)); ok {
		t.Error("over-long name should fail")
	}
}

func TestOID(t *testing.T) {
	if _, ok := OID("64f1c0a2b3d4e5f6a7b8c9d0"); !ok {
		t.Error("valid 24-hex id rejected")
	}
	if _, ok := OID(" 64f1c0a2b3d4e5f6a7b8c9d0 "); !ok {
		t.Error("surrounding whitespace should be tolerated")
	}
	for _, bad := range []string{"", "xyz", "64f1c0a2b3d4e5f6a7b8c9"} {
		if _, ok := OID(bad); ok {
			t.Errorf("OID(%q) accepted", bad)
		}
	}
}

func TestQtyAndRating(t *testing.T) {
	if Qty(0) || Qty(-3) || !Qty(1) {
		t.Error("Qty bounds wrong")
	}
	if Rating(0) || Rating(6) || !Rating(1) || !Rating(5) {
		t.Error("Rating bounds wrong")
	}
}

func TestPassword(t *testing.T) {
	if Password("short") {
		t.Error("5 chars should fail")
	}
	if !Password("secret") {
		t.Error("6 chars should pass")
	}
	if Password(strings.Repeat("p", 73)) {
		t.Error("over bcrypt's 72-byte cap should fail")
	}
}

func TestPage(t *testing.T) {
	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 10},
		{"0", "-5", 1, 10},
		{"3", "25", 3, 25},
		{"2", "5000", 2, 100},
		{"junk", "junk", 1, 10},
	}
	for _, tc := range cases {
		p, l := Page(tc.page, tc.limit)
		if p != tc.wantPage || l != tc.wantLimit {
			t.Errorf("Page(%q, %q) = %d, %d; want %d, %d", tc.page, tc.limit, p, l, tc.wantPage, tc.wantLimit)
		}
	}
}
