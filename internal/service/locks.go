package service

import "sync"

// conversationLocks serializes work per conversation. Messages for
// different conversations proceed fully in parallel; messages for the
// same conversation queue on its mutex.
type conversationLocks struct {
	locks sync.Map // conversation id -> *sync.Mutex
}

// acquire locks the conversation and returns the unlock func.
func (l *conversationLocks) acquire(conversationID string) func() {
	v, _ := l.locks.LoadOrStore(conversationID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
