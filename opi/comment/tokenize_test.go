// SPDX-License-Identifier: MIT
package comment

import "testing"

func TestToken(t *testing.T) {
	cases := []struct {
		line string
		key  string
		rest string
	}{
		{"%ALDImageFileName: (foo.tif)", "%ALDImageFileName:", "(foo.tif)"},
		{"%%BeginOPI: 2.0", "%%BeginOPI:", "2.0"},
		{"%%+", "%%+", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		key, rest := Token(c.line)
		if key != c.key || rest != c.rest {
			t.Errorf("Token(%q) = (%q, %q), want (%q, %q)", c.line, key, rest, c.key, c.rest)
		}
	}
}

func TestDecodePSString(t *testing.T) {
	cases := []struct{ in, want string }{
		{"(hello world)", "hello world"},
		{`(a\(b\)c)`, "a(b)c"},
		{`(back\\slash)`, `back\slash`},
		{"(tag<FF>here)", "tag?here"},
		{`(octal\101here)`, "octal?here"},
	}
	for _, c := range cases {
		if got := DecodePSString(c.in); got != c.want {
			t.Errorf("DecodePSString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFloatsInts(t *testing.T) {
	if got := Floats("1.5 2 -3.25"); len(got) != 3 || got[1] != 2 {
		t.Errorf("Floats() = %v", got)
	}
	if got := Ints("1 2 3"); len(got) != 3 || got[2] != 3 {
		t.Errorf("Ints() = %v", got)
	}
}

func TestParenStrings(t *testing.T) {
	got := ParenStrings("(one)(two three)")
	want := []string{"one", "two three"}
	if len(got) != len(want) {
		t.Fatalf("ParenStrings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParenStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
