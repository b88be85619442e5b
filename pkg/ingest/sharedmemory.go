package ingest

import "sync"

// sharedMemory tracks the last block height seen per namespace. The
// producer records every height it hands to the block queue;
// getLastSeenBlockHeight has no caller in this package.
//
// Adapted from the teacher's pkg/sharedmemory.SharedMemory, keyed by
// namespace string instead of the teacher's chain-id type (this system has
// no chain-id concept; a namespace plays the equivalent isolation role,
// spec §3.1 "Subject strings are namespace-prefixed").
type sharedMemory struct {
	mu                  sync.RWMutex
	lastSeenBlockHeight map[string]int64
}

func newSharedMemory() *sharedMemory {
	return &sharedMemory{lastSeenBlockHeight: make(map[string]int64)}
}

func (sm *sharedMemory) setLastSeenBlockHeight(namespace string, height int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.lastSeenBlockHeight[namespace] = height
}

func (sm *sharedMemory) getLastSeenBlockHeight(namespace string) (int64, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	h, ok := sm.lastSeenBlockHeight[namespace]
	return h, ok
}
