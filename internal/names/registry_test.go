package names

import (
	"reflect"
	"testing"
)

func TestAllocate_DisplayName(t *testing.T) {
	r := NewRegistry()
	if got := r.Allocate("https://chatgpt.com/share/abc123", "doe.42"); got != "doe.42" {
		t.Errorf("name = %q", got)
	}
}

func TestAllocate_FallsBackToShareID(t *testing.T) {
	r := NewRegistry()
	if got := r.Allocate("https://chatgpt.com/share/abc-123", ""); got != "abc-123" {
		t.Errorf("name = %q", got)
	}
}

func TestAllocate_Collisions(t *testing.T) {
	r := NewRegistry()
	var got []string
	for i := 0; i < 3; i++ {
		got = append(got, r.Allocate("https://chatgpt.com/share/x", "doe.42"))
	}
	want := []string{"doe.42", "doe.42 (1)", "doe.42 (2)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	inputs := []struct{ link, name string }{
		{"https://chatgpt.com/share/a", "smith.1"},
		{"https://chatgpt.com/share/b", "smith.1"},
		{"https://chatgpt.com/share/c", ""},
		{"https://chatgpt.com/share/c", ""},
	}
	run := func() []string {
		r := NewRegistry()
		var out []string
		for _, in := range inputs {
			out = append(out, r.Allocate(in.link, in.name))
		}
		return out
	}
	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ: %v vs %v", first, second)
	}
	seen := make(map[string]bool)
	for _, n := range first {
		if seen[n] {
			t.Errorf("duplicate name %q", n)
		}
		seen[n] = true
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"doe.42":            "doe.42",
		"a/b\\c":            "a_b_c",
		"  spaced  ":        "spaced",
		"..dots..":          "dots",
		`q:*?"<>|`:          "q_______",
		"name\x00with\x1fctl": "name_with_ctl",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAllocate_EmptyEverything(t *testing.T) {
	r := NewRegistry()
	if got := r.Allocate("", ""); got != "conversation" {
		t.Errorf("name = %q, want conversation", got)
	}
}
