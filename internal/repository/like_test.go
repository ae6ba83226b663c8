package repository

import "testing"

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ahmad", `%ahmad%`},
		{"100%", `%100\%%`},
		{"_", `%\_%`},
		{"a_b%c", `%a\_b\%c%`},
		{`back\slash`, `%back\\slash%`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := containsPattern(tt.in); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPrefixPattern(t *testing.T) {
	if got := prefixPattern("appointment."); got != `appointment.%` {
		t.Fatalf("expected appointment.%%, got %s", got)
	}
	if got := prefixPattern("user_"); got != `user\_%` {
		t.Fatalf(`expected user\_%%, got %s`, got)
	}
}
