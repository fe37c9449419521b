package server

import (
	"encoding/json"
	"testing"
)

func TestRequestID_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		id       RequestID
		expected string
	}{
		{
			name:     "string ID",
			id:       RequestID{value: "test-id"},
			expected: `"test-id"`,
		},
		{
			name:     "numeric string ID",
			id:       RequestID{value: "123"},
			expected: `"123"`,
		},
		{
			name:     "empty ID",
			id:       RequestID{value: ""},
			expected: `""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.id)
			if err != nil {
				t.Fatalf("Failed to marshal RequestID: %v", err)
			}

			if string(data) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(data))
			}
		})
	}
}

func TestRequestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "string ID",
			input:    `"test-id"`,
			expected: "test-id",
		},
		{
			name:     "numeric ID",
			input:    `123`,
			expected: "123",
		},
		{
			name:     "null ID",
			input:    `null`,
			expected: "",
		},
		{
			name:     "float ID",
			input:    `123.456`,
			expected: "123.456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id RequestID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if id.value != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, id.value)
			}
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(RequestID{value: "7"}, MethodNotFound, "Method not found: bogus")

	if resp.JSONRPC != jsonRPCVersion {
		t.Errorf("Expected version %s, got %s", jsonRPCVersion, resp.JSONRPC)
	}
	if resp.Result != nil {
		t.Error("Error response should not carry a result")
	}
	if resp.Error == nil || resp.Error.Code != MethodNotFound {
		t.Errorf("Expected error code %d, got %+v", MethodNotFound, resp.Error)
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta(RequestID{value: "1"}, "frame sent", map[string]string{"via": "server"})

	if resp.Error != nil {
		t.Error("Success response should not carry an error")
	}
	if resp.Result == nil || resp.Result.Output != "frame sent" {
		t.Errorf("Unexpected result: %+v", resp.Result)
	}
	if resp.Result.Meta["via"] != "server" {
		t.Errorf("Expected via=server meta, got %v", resp.Result.Meta)
	}
}

func TestGeometryParamsRoundTrip(t *testing.T) {
	data, err := json.Marshal(GeometryParams{Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got GeometryParams
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Width != 1280 || got.Height != 720 {
		t.Errorf("Round trip mismatch: %+v", got)
	}
}
