package tokenize

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{" Ny  Fianakaviana ", []string{"ny", "fianakaviana"}},
		{"Salama tontolo", []string{"salama", "tontolo"}},
		{"", []string{}},
		{"   \t\n ", []string{}},
		{"DIA\tmandroso\nAry", []string{"dia", "mandroso", "ary"}},
		{"single", []string{"single"}},
		// decomposed "e" + U+0301 must match the precomposed form
		{"Cafe\u0301 CAF\u00c9", []string{"caf\u00e9", "caf\u00e9"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := Tokenize(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestTokenizeNeverReturnsNil(t *testing.T) {
	for _, in := range []string{"", " ", "\t"} {
		if got := Tokenize(in); got == nil {
			t.Errorf("Tokenize(%q) returned nil", in)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("ny", "dia"); got != "ny dia" {
		t.Errorf("Join = %q", got)
	}
	if got := Join("tonga"); got != "tonga" {
		t.Errorf("Join single = %q", got)
	}
}
