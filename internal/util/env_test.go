package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"yes", false, true},
		{" ON ", false, true},
		{"0", true, false},
		{"off", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Setenv("SHOWDIRECTOR_TEST_BOOL", tt.value)
		if got := ParseBoolEnv("SHOWDIRECTOR_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("SHOWDIRECTOR_TEST_INT", "12")
	if got := ParseIntEnv("SHOWDIRECTOR_TEST_INT", 3); got != 12 {
		t.Errorf("ParseIntEnv = %d, want 12", got)
	}
	t.Setenv("SHOWDIRECTOR_TEST_INT", "twelve")
	if got := ParseIntEnv("SHOWDIRECTOR_TEST_INT", 3); got != 3 {
		t.Errorf("ParseIntEnv invalid = %d, want default 3", got)
	}
}

func TestGetenvDefault(t *testing.T) {
	t.Setenv("SHOWDIRECTOR_TEST_STR", "   ")
	if got := GetenvDefault("SHOWDIRECTOR_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("GetenvDefault blank = %q, want fallback", got)
	}
	t.Setenv("SHOWDIRECTOR_TEST_STR", " stage ")
	if got := GetenvDefault("SHOWDIRECTOR_TEST_STR", "fallback"); got != "stage" {
		t.Errorf("GetenvDefault = %q, want stage", got)
	}
}
