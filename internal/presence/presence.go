// Package presence derives the display name and color shown for a
// participant in the collaborative surface. Derivation is a pure function
// of the identity, so the same user gets the same color in every session
// without a persisted color assignment table.
package presence

import "fmt"

const (
	fallbackName = "Anonymous"
	saturation   = 80
	lightness    = 60
)

type Attributes struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// nameCandidates returns the display name candidates in priority order.
// The order is a contract: full name, first name, username, email.
func nameCandidates(fullName, firstName, username, email string) []string {
	return []string{fullName, firstName, username, email}
}

// DisplayName picks the first non-empty candidate, falling back to a fixed
// literal so an identity with no usable fields still renders.
func DisplayName(fullName, firstName, username, email string) string {
	for _, candidate := range nameCandidates(fullName, firstName, username, email) {
		if candidate != "" {
			return candidate
		}
	}
	return fallbackName
}

// ColorFor maps a name to an HSL color whose hue is the sum of the name's
// character codes reduced modulo 360. Two names with equal sums share a
// color; stability matters here, not uniqueness.
func ColorFor(name string) string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", HueFor(name), saturation, lightness)
}

// HueFor returns the hue in [0, 360) for a name. The empty name sums to 0.
func HueFor(name string) int {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return sum % 360
}

// Derive computes the presence attributes for an identity's name fields.
func Derive(fullName, firstName, username, email string) Attributes {
	name := DisplayName(fullName, firstName, username, email)
	return Attributes{Name: name, Color: ColorFor(name)}
}
