package idempotency

import "github.com/google/uuid"

const Header = "Idempotency-Key"

var namespace = uuid.MustParse("6f1f4a8e-3c2b-5d7a-9e41-0b8c2d6a7f13")

// ForAction derives a stable key for one fulfillment request, so that a
// retried request reaches the upstream API with the key of the original.
func ForAction(orderID, action, value string) string {
	return uuid.NewSHA1(namespace, []byte(orderID+"\x00"+action+"\x00"+value)).String()
}
