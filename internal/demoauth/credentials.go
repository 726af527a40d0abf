// Package demoauth backs the sample authentication routes under /demo-auth/:
// a fixed username/password set checked in constant time and static header
// tokens kept in an injected Store.
package demoauth

import (
	"crypto/subtle"
)

// Credentials maps usernames to plaintext demo passwords.
type Credentials struct {
	passwords map[string]string
}

func NewCredentials(users map[string]string) *Credentials {
	passwords := make(map[string]string, len(users))
	for u, p := range users {
		passwords[u] = p
	}
	return &Credentials{passwords: passwords}
}

// Check reports whether password is correct for username. Unknown users still
// pay for a comparison.
func (c *Credentials) Check(username, password string) bool {
	expected, ok := c.passwords[username]
	if !ok {
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

func (c *Credentials) Len() int {
	return len(c.passwords)
}
