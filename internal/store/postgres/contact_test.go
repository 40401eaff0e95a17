package postgres

import "testing"

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"eng":     "eng",
		"50%":     `50\%`,
		"a_b":     `a\_b`,
		`c:\path`: `c:\\path`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNullable(t *testing.T) {
	if nullable("") != nil {
		t.Fatal("empty string should map to NULL")
	}
	if v := nullable("x"); v == nil || *v != "x" {
		t.Fatalf("nullable(x) = %v", v)
	}
}
