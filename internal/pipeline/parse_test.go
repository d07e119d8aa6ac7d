package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"orgdir/internal"
)

func TestParseList(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  []string
	}{
		{name: "semicolons", input: "a; b; c", want: []string{"a", "b", "c"}},
		{name: "commas", input: "a, b", want: []string{"a", "b"}},
		{name: "semicolon wins over comma", input: "a, b; c", want: []string{"a, b", "c"}},
		{name: "single", input: "coop", want: []string{"coop"}},
		{name: "list elements re-split", input: []any{"a;b", "c"}, want: []string{"a", "b", "c"}},
		{name: "list element comma", input: []any{"x, y", "z"}, want: []string{"x", "y", "z"}},
		{name: "list element semicolon first", input: []any{"p, q; r"}, want: []string{"p, q", "r"}},
		{name: "string slice", input: []string{"a;b"}, want: []string{"a", "b"}},
		{name: "non-string element", input: []any{"a", float64(7)}, want: []string{"a", "7"}},
		{name: "empty list", input: []any{}, want: []string{}},
		{name: "nil", input: nil, want: []string{}},
		{name: "empty string", input: "", want: []string{}},
		{name: "number", input: float64(42), want: []string{"42"}},
		{name: "true", input: true, want: []string{"true"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseList(tc.input)
			if got == nil {
				t.Fatalf("got nil slice")
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupUsesPresenceNotTruthiness(t *testing.T) {
	fields := internal.Fields{"Name": "", "name": "Later"}

	v, ok := Lookup(fields, aliasName)
	if !ok || v != "" {
		t.Fatalf("got %v ok=%v", v, ok)
	}

	v, ok = LookupTruthy(fields, aliasName)
	if !ok || v != "Later" {
		t.Fatalf("got %v ok=%v", v, ok)
	}

	if _, ok := Lookup(fields, []string{"missing"}); ok {
		t.Fatalf("absent alias reported present")
	}
}
