package session

import "sync"

// Navigator moves the user between locations. The lifecycle uses it to send
// the user to the sign-in path when a session is lost.
type Navigator interface {
	Location() string
	Navigate(path string)
}

// PathNavigator is an in-memory [Navigator] that records every navigation.
type PathNavigator struct {
	mu       sync.Mutex
	location string
	history  []string
}

// NewPathNavigator returns a navigator positioned at start.
func NewPathNavigator(start string) *PathNavigator {
	return &PathNavigator{location: start}
}

// Location implements [Navigator].
func (n *PathNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Navigate implements [Navigator].
func (n *PathNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = path
	n.history = append(n.history, path)
}

// History returns the navigations performed so far, oldest first.
func (n *PathNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}
