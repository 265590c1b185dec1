package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want *string
	}{
		{"nil", nil, nil},
		{"empty", StringPtr(""), nil},
		{"only bullet", StringPtr("・"), nil},
		{"blank lines and bullet", StringPtr("a\n\n ・ \nb"), StringPtr("a\nb")},
		{"trims lines", StringPtr("  a  \n\tb\t"), StringPtr("a\nb")},
		{"crlf", StringPtr("a\r\nb\r\n"), StringPtr("a\nb")},
		{"bullet prefixed text kept", StringPtr("・done"), StringPtr("・done")},
		{"whitespace only", StringPtr(" \n \n\t"), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "・", "a\n\n ・ \nb", " x \r\n y", "・\n・\nz", "a\nb\nc"}
	for _, in := range inputs {
		once := NormalizeString(in)
		twice := Normalize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("normalize not idempotent for %q (-once +twice):\n%s", in, diff)
		}
	}
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	in := "a\n\nb"
	_ = NormalizeString(in)
	if in != "a\n\nb" {
		t.Fatalf("input mutated: %q", in)
	}
}

func TestExtractItems(t *testing.T) {
	if diff := cmp.Diff([]string{"x", "y", "z"}, ExtractItems(StringPtr("x\n y \n\nz"))); diff != "" {
		t.Fatalf("ExtractItems mismatch (-want +got):\n%s", diff)
	}
	got := ExtractItems(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice for nil, got %#v", got)
	}
	if diff := cmp.Diff([]string{"a", "a"}, ExtractItems(StringPtr("a\na"))); diff != "" {
		t.Fatalf("duplicates must be kept (-want +got):\n%s", diff)
	}
}
