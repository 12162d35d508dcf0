package subscriber

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// maxNameGraphemes bounds the user-perceived character count, so a name made
// of multi-byte characters is measured the way the subscriber sees it.
const maxNameGraphemes = 256

// forbiddenNameCharacters would allow breaking out of the HTML and SQL
// contexts the name is later rendered into.
const forbiddenNameCharacters = `/()"<>\{}`

// Name is a validated subscriber display name.
type Name string

// ParseName trims raw and rejects empty names, names longer than 256
// grapheme clusters, and names containing forbidden characters.
func ParseName(raw string) (Name, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("subscriber name is empty")
	}
	if uniseg.GraphemeClusterCount(trimmed) > maxNameGraphemes {
		return "", fmt.Errorf("subscriber name exceeds %d characters", maxNameGraphemes)
	}
	if strings.ContainsAny(trimmed, forbiddenNameCharacters) {
		return "", fmt.Errorf("subscriber name contains a forbidden character")
	}
	return Name(trimmed), nil
}

func (n Name) String() string {
	return string(n)
}
