// ABOUTME: Dual-keyed subscription index: conversation to connections and back.
// ABOUTME: Both maps mutate under one mutex so the views never disagree.

package hub

import "sync"

type subscriptionIndex struct {
	mu     sync.RWMutex
	byConv map[string]map[string]*Conn
	byConn map[string]map[string]struct{}
}

func newSubscriptionIndex() *subscriptionIndex {
	return &subscriptionIndex{
		byConv: make(map[string]map[string]*Conn),
		byConn: make(map[string]map[string]struct{}),
	}
}

// add subscribes the connection to the conversation. Re-subscribing is a
// no-op and reports false.
func (s *subscriptionIndex) add(c *Conn, conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byConn[c.id][conversationID]; ok {
		return false
	}
	if s.byConv[conversationID] == nil {
		s.byConv[conversationID] = make(map[string]*Conn)
	}
	s.byConv[conversationID][c.id] = c
	if s.byConn[c.id] == nil {
		s.byConn[c.id] = make(map[string]struct{})
	}
	s.byConn[c.id][conversationID] = struct{}{}
	return true
}

// remove drops one subscription, reporting whether it existed.
func (s *subscriptionIndex) remove(connID, conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byConn[connID][conversationID]; !ok {
		return false
	}
	delete(s.byConn[connID], conversationID)
	if len(s.byConn[connID]) == 0 {
		delete(s.byConn, connID)
	}
	delete(s.byConv[conversationID], connID)
	if len(s.byConv[conversationID]) == 0 {
		delete(s.byConv, conversationID)
	}
	return true
}

// removeConn drops every subscription the connection holds and returns the
// conversations it was subscribed to.
func (s *subscriptionIndex) removeConn(connID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs := s.byConn[connID]
	if len(convs) == 0 {
		delete(s.byConn, connID)
		return nil
	}
	out := make([]string, 0, len(convs))
	for conversationID := range convs {
		out = append(out, conversationID)
		delete(s.byConv[conversationID], connID)
		if len(s.byConv[conversationID]) == 0 {
			delete(s.byConv, conversationID)
		}
	}
	delete(s.byConn, connID)
	return out
}

// subscribers returns a snapshot of the connections subscribed to the
// conversation. The fan-out iterates the snapshot without holding the index
// lock.
func (s *subscriptionIndex) subscribers(conversationID string) []*Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conns := s.byConv[conversationID]
	if len(conns) == 0 {
		return nil
	}
	out := make([]*Conn, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

func (s *subscriptionIndex) isSubscribed(connID, conversationID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byConn[connID][conversationID]
	return ok
}

func (s *subscriptionIndex) hasSubscribers(conversationID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byConv[conversationID]) > 0
}

func (s *subscriptionIndex) conversationsOf(connID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byConn[connID]))
	for conversationID := range s.byConn[connID] {
		out = append(out, conversationID)
	}
	return out
}
