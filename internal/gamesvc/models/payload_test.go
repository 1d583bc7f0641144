package models

import (
	"encoding/json"
	"testing"
)

func TestExtractIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		userID  string
		orderID string
	}{
		{
			name:    "camelCase",
			body:    `{"userId":"u1","orderId":"o1","gameUrl":"https://x"}`,
			userID:  "u1",
			orderID: "o1",
		},
		{
			name:    "snake_case",
			body:    `{"user_id":"u2","order_id":"o2","players":[]}`,
			userID:  "u2",
			orderID: "o2",
		},
		{
			name:    "both spellings prefer snake_case",
			body:    `{"user_id":"snake","userId":"camel","order_id":"snake-o","orderId":"camel-o"}`,
			userID:  "snake",
			orderID: "snake-o",
		},
		{
			name: "absent identifiers come back empty",
			body: `{"message":"happy birthday"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			userID, orderID, err := ExtractIdentifiers(json.RawMessage(tc.body))
			if err != nil {
				t.Fatal(err)
			}
			if userID != tc.userID || orderID != tc.orderID {
				t.Fatalf("got (%q, %q), want (%q, %q)", userID, orderID, tc.userID, tc.orderID)
			}
		})
	}
}

func TestExtractIdentifiers_Malformed(t *testing.T) {
	if _, _, err := ExtractIdentifiers(json.RawMessage(`{"userId":`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
