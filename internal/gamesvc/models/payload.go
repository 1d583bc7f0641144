package models

import (
	"encoding/json"
	"fmt"
)

// The builder pages never agreed on a casing for the two identifiers:
// whack-a-me posts userId/orderId while the newer games post
// user_id/order_id. Both spellings are accepted at the boundary and the
// snake_case form wins when a payload carries both.
type payloadIdentifiers struct {
	UserID      string `json:"user_id"`
	UserIDCamel string `json:"userId"`

	OrderID      string `json:"order_id"`
	OrderIDCamel string `json:"orderId"`
}

// ExtractIdentifiers pulls the participant and grouping identifiers out of a
// caller-supplied game payload regardless of casing convention.
func ExtractIdentifiers(body json.RawMessage) (userID, orderID string, err error) {
	ids := payloadIdentifiers{}
	if err := json.Unmarshal(body, &ids); err != nil {
		return "", "", fmt.Errorf("malformed game payload: %w", err)
	}

	userID = ids.UserID
	if userID == "" {
		userID = ids.UserIDCamel
	}
	orderID = ids.OrderID
	if orderID == "" {
		orderID = ids.OrderIDCamel
	}

	return userID, orderID, nil
}
