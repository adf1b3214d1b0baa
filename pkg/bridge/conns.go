package bridge

import "sort"

// ConnectionSet holds the active connections per radio.
type ConnectionSet map[string]map[string]struct{}

// Add adds a connection. It returns false if it is already present.
func (s ConnectionSet) Add(radio, conn string) bool {
	conns := s[radio]
	if conns == nil {
		conns = make(map[string]struct{})
		s[radio] = conns
	}
	if _, ok := conns[conn]; ok {
		return false
	}
	conns[conn] = struct{}{}
	return true
}

// Remove removes a connection. It returns false if it is not present.
func (s ConnectionSet) Remove(radio, conn string) bool {
	conns := s[radio]
	if _, ok := conns[conn]; !ok {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(s, radio)
	}
	return true
}

// Of returns the sorted connections of a radio.
func (s ConnectionSet) Of(radio string) []string {
	conns := make([]string, 0, len(s[radio]))
	for conn := range s[radio] {
		conns = append(conns, conn)
	}
	sort.Strings(conns)
	return conns
}

// Len returns the total number of connections.
func (s ConnectionSet) Len() (n int) {
	for _, conns := range s {
		n += len(conns)
	}
	return
}
