package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateOrderRef returns a short human-readable order reference, e.g. ORD-1A2B3C4D
func GenerateOrderRef() string {
	return GenerateSecureID("ORD-")
}

// GenerateSecureID generates a random id with the given prefix
func GenerateSecureID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s%s", prefix, strings.ToUpper(id[:8]))
}
