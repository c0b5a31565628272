package analysis

import "testing"

func TestHasContrastiveMarker(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "good but too short", want: true},
		{text: "However, the audio was off", want: true},
		{text: "you should zoom in more", want: true},
		{text: "this could use chapters", want: true},
		{text: "(but the intro drags)", want: true},
		{text: "it's about time someone covered this", want: false},
		{text: "the butter sculpture part was wild", want: false},
		{text: "shoulder cam footage looked great", want: false},
		{text: "loved every minute", want: false},
		{text: "", want: false},
	}

	for _, tt := range tests {
		if got := hasContrastiveMarker(tt.text); got != tt.want {
			t.Errorf("hasContrastiveMarker(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
