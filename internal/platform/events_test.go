package platform

import "testing"

func TestSerialBefore(t *testing.T) {
	tests := []struct {
		a, b Serial
		want bool
	}{
		{1, 2, true},
		{2, 1, false},
		{5, 5, false},
		{0xfffe, 3, true}, // wrapped
		{3, 0xfffe, false},
	}
	for _, tt := range tests {
		if got := tt.a.Before(tt.b); got != tt.want {
			t.Errorf("Serial(%d).Before(%d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
