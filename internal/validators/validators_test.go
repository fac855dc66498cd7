package validators

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"912 345 678", "+351912345678", true},
		{"+351 912345678", "+351912345678", true},
		{"00351912345678", "+351912345678", true},
		{"+34 612 345 678", "+34612345678", true},
		{"123", "", false},
		{"", "", false},
		{"abc", "", false},
	}

	for _, tt := range tests {
		got, err := NormalizePhone(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("NormalizePhone(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("NormalizePhone(%q) = %q, want error", tt.in, got)
		}
	}
}

func TestIsValidNIF(t *testing.T) {
	tests := []struct {
		nif  string
		want bool
	}{
		{"123456789", true},
		{"999999990", true},
		{"501442600", true},
		{"123456780", false},
		{"12345678", false},
		{"423456789", false},
		{"12345678a", false},
	}

	for _, tt := range tests {
		if got := IsValidNIF(tt.nif); got != tt.want {
			t.Errorf("IsValidNIF(%q) = %v, want %v", tt.nif, got, tt.want)
		}
	}
}
