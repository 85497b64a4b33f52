package util

import "testing"

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*.log", "debug.log", true},
		{"*.log", "debug.txt", false},
		{"node_modules", "node_modules", true},
		{"node_modules", "node_modules_backup", false},
		{".*", ".git", true},
		{"[invalid", "anything", false}, // malformed pattern never matches
	}

	for _, tc := range cases {
		if got := MatchPattern(tc.pattern, tc.name); got != tc.want {
			t.Errorf("MatchPattern(%q, %q) = %v, want %v", tc.pattern, tc.name, got, tc.want)
		}
	}
}
