package youtube

import "testing"

func TestParseTimedText(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "plain lines",
			xml:  `<timedtext><body><p t="0" d="1000">hello world</p><p t="1000" d="1000">second line</p></body></timedtext>`,
			want: "hello world second line",
		},
		{
			name: "segmented lines",
			xml:  `<timedtext><body><p t="0" d="1000"><s>seg</s><s>mented</s></p><p t="1000" d="500">plain</p></body></timedtext>`,
			want: "segmented plain",
		},
		{
			name: "skips empty lines",
			xml:  `<timedtext><body><p t="0" d="100">  </p><p t="100" d="100">kept</p></body></timedtext>`,
			want: "kept",
		},
		{
			name: "empty body",
			xml:  `<timedtext><body></body></timedtext>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimedText([]byte(tt.xml))
			if err != nil {
				t.Fatalf("parseTimedText: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTimedTextRejectsGarbage(t *testing.T) {
	if _, err := parseTimedText([]byte("not xml at all <<<")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"12345", 12345},
		{"", 0},
		{"12abc", 12},
	}
	for _, tt := range tests {
		if got := parseCount(tt.in); got != tt.want {
			t.Errorf("parseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
