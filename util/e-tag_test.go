package util

import "testing"

func TestGenerateETagStable(t *testing.T) {
	a := GenerateETag(map[string]int{"a": 1, "b": 2})
	b := GenerateETag(map[string]int{"b": 2, "a": 1})
	if a != b {
		t.Fatalf("map order changed etag: %s vs %s", a, b)
	}
	if GenerateETag("x") != GenerateETag([]byte("x")) {
		t.Fatal("string and bytes should hash the same")
	}
}

func TestETagMatches(t *testing.T) {
	etag := StrongETag("payload")
	cases := []struct {
		header string
		want   bool
	}{
		{"", false},
		{etag, true},
		{"W/" + etag, true},
		{`"other", ` + etag, true},
		{"*", true},
		{`"other"`, false},
	}
	for _, tc := range cases {
		if got := ETagMatches(tc.header, etag); got != tc.want {
			t.Errorf("ETagMatches(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}
