package llm

import (
	"errors"
	"testing"
)

func TestDecodeModelJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name    string
		input   string
		want    payload
		wantErr bool
	}{
		{
			name:  "clean json",
			input: `{"name":"x","count":2}`,
			want:  payload{Name: "x", Count: 2},
		},
		{
			name:  "prose around the object",
			input: "Here is the result:\n{\"name\":\"y\",\"count\":5}\nHope that helps!",
			want:  payload{Name: "y", Count: 5},
		},
		{
			name:    "empty output",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "no object at all",
			input:   "the model refused",
			wantErr: true,
		},
		{
			name:    "broken json",
			input:   `{"name": "z", "count": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := decodeModelJSON(tt.input, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeModelJSON: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	if !isRateLimitError(errors.New("HTTP 429 Too Many Requests")) {
		t.Error("429 not detected as rate limit")
	}
	if !isServerError(errors.New("502 Bad Gateway")) {
		t.Error("502 not detected as server error")
	}
	if isRateLimitError(errors.New("invalid api key")) || isServerError(errors.New("invalid api key")) {
		t.Error("auth failure misclassified as retryable")
	}
}

func TestGenerateSchemaStrict(t *testing.T) {
	type inner struct {
		Label string `json:"label"`
	}
	type outer struct {
		Items []inner `json:"items"`
		Total int     `json:"total"`
	}

	schema := GenerateSchema[outer]()

	if schema["additionalProperties"] != false {
		t.Error("root object allows additional properties")
	}
	required, _ := schema["required"].([]string)
	if len(required) != 2 {
		t.Errorf("root required = %v, want both fields", schema["required"])
	}

	props := schema["properties"].(map[string]interface{})
	items := props["items"].(map[string]interface{})
	itemSchema := items["items"].(map[string]interface{})
	if itemSchema["additionalProperties"] != false {
		t.Error("nested array element schema allows additional properties")
	}
}
