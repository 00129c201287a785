package http

import "fmt"

const maxIDLength = 64

// validateID rejects empty, oversized, or suspicious path identifiers
// before they reach the upstream client.
func validateID(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%s exceeds %d characters", field, maxIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return fmt.Errorf("%s contains invalid character %q", field, r)
		}
	}
	return nil
}
