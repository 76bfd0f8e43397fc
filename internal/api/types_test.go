package api

import (
	"encoding/json"
	"testing"
)

func TestCollectionIDUnmarshal(t *testing.T) {
	tests := []struct {
		name      string
		json      string
		wantID    int
		wantValid bool
	}{
		{
			name:      "number",
			json:      `{"id": 1, "name": "q", "collection_id": 123}`,
			wantID:    123,
			wantValid: true,
		},
		{
			name:      "numeric string",
			json:      `{"id": 2, "name": "q", "collection_id": "456"}`,
			wantID:    456,
			wantValid: true,
		},
		{
			name: "root keyword",
			json: `{"id": 3, "name": "q", "collection_id": "root"}`,
		},
		{
			name: "null",
			json: `{"id": 4, "name": "q", "collection_id": null}`,
		},
		{
			name: "missing",
			json: `{"id": 5, "name": "q"}`,
		},
		{
			name: "unparsable string",
			json: `{"id": 6, "name": "q", "collection_id": "personal"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var card Card
			if err := json.Unmarshal([]byte(tt.json), &card); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if card.CollectionID.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", card.CollectionID.ID, tt.wantID)
			}
			if card.CollectionID.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", card.CollectionID.Valid, tt.wantValid)
			}
		})
	}
}

func TestCardCollectionName(t *testing.T) {
	withCollection := Card{
		Collection: &Collection{Name: "Finance"},
	}
	if got := withCollection.CollectionName(); got != "Finance" {
		t.Errorf("CollectionName() = %q, want %q", got, "Finance")
	}

	var topLevel Card
	if got := topLevel.CollectionName(); got != "" {
		t.Errorf("CollectionName() = %q, want empty", got)
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{
			name:     "common name preferred",
			user:     User{CommonName: "Ada L", FirstName: "Ada", Email: "ada@b.test"},
			expected: "Ada L",
		},
		{
			name:     "first name fallback",
			user:     User{FirstName: "Ada", Email: "ada@b.test"},
			expected: "Ada",
		},
		{
			name:     "email last resort",
			user:     User{Email: "ada@b.test"},
			expected: "ada@b.test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParameterBindingShape(t *testing.T) {
	binding := ParameterBinding{
		ID:     "abc-123",
		Type:   "category",
		Target: json.RawMessage(`["variable",["template-tag","state"]]`),
		Value:  "CA",
	}

	data, err := json.Marshal(binding)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded["id"] != "abc-123" {
		t.Errorf("id = %v, want abc-123", decoded["id"])
	}
	if decoded["type"] != "category" {
		t.Errorf("type = %v, want category", decoded["type"])
	}
	if decoded["value"] != "CA" {
		t.Errorf("value = %v, want CA", decoded["value"])
	}
	if _, ok := decoded["target"].([]any); !ok {
		t.Errorf("target = %v, want nested array", decoded["target"])
	}
}
