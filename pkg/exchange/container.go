package exchange

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Container is a thread-safe registry of named clients.
type Container struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewContainer creates and returns a new empty container.
func NewContainer() *Container {
	return &Container{
		clients: make(map[string]Client),
	}
}

// Register adds a client under name. A client already registered under
// that name is replaced and returned so the caller can close it.
func (c *Container) Register(name string, client Client) Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.clients[name]
	c.clients[name] = client
	return prev
}

// Get retrieves a client by name.
func (c *Container) Get(name string) (Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	client, exists := c.clients[name]
	if !exists {
		return nil, fmt.Errorf("client %q not found", name)
	}
	return client, nil
}

// Names returns the registered names in sorted order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.clients))
	for name := range c.clients {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Unregister removes a client by name without closing it.
func (c *Container) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, name)
}

// Exists checks whether a client with the given name is registered.
func (c *Container) Exists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.clients[name]
	return exists
}

// Close closes every registered client and empties the container.
func (c *Container) Close() error {
	c.mu.Lock()
	clients := c.clients
	c.clients = make(map[string]Client)
	c.mu.Unlock()

	var errs []error
	for name, client := range clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
