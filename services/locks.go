package services

import (
	"strconv"
	"sync"
)

// keyedMutex serializes work per key inside this process. The store's row
// locks and conditional updates cover other processes.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*keyedEntry{}}
}

// Lock blocks until key is free and returns its unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

var workflowLocks = newKeyedMutex()

func lineageKey(lineageID uint) string {
	return "lineage:" + strconv.FormatUint(uint64(lineageID), 10)
}

func groupLockKey(groupKey string) string {
	return "group:" + groupKey
}

func draftLockKey(userID, lineageID uint) string {
	return "draft:" + strconv.FormatUint(uint64(userID), 10) + ":" + strconv.FormatUint(uint64(lineageID), 10)
}
