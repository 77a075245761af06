// Package session owns the credential lifecycle: load on start, set on
// login, clear on logout or invalidation. Everything else in the client
// observes authentication state only through the Manager.
package session

import "sync"

// Credential is the single serialized credential cell. The manager is
// the only writer; the transport reads it on every request. Writers
// fully replace the value, readers see either the old or the new token,
// never a partial update.
type Credential struct {
	mu    sync.RWMutex
	token string
}

// Token returns the current bearer token, or "" when anonymous.
// Implements transport.TokenSource.
func (c *Credential) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Credential) set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Credential) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}
