package vfs

import (
	"sort"
	"sync"
)

// folderLocks serializes engine operations per folder path.
//
// Every mutation of a folder's ordinal space takes the folder's lock for the
// whole shift-then-assign sequence, so two operations targeting the same
// folder cannot interleave and corrupt the no-duplicate invariant. Locks are
// created on first use and never reclaimed; the table grows with the number
// of distinct folders touched, which is bounded by the workspace size.
type folderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFolderLocks() *folderLocks {
	return &folderLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *folderLocks) get(folder string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[folder]
	if !ok {
		m = &sync.Mutex{}
		l.locks[folder] = m
	}
	return m
}

// lock acquires the lock for one folder and returns the unlock func.
func (l *folderLocks) lock(folder string) func() {
	m := l.get(folder)
	m.Lock()
	return m.Unlock
}

// lockAll acquires the locks for a set of folders in sorted path order, so
// two operations spanning overlapping folder sets always acquire in the same
// order and cannot deadlock. Duplicate paths are collapsed.
func (l *folderLocks) lockAll(folders []string) func() {
	unique := make([]string, 0, len(folders))
	seen := make(map[string]bool, len(folders))
	for _, f := range folders {
		if !seen[f] {
			seen[f] = true
			unique = append(unique, f)
		}
	}
	sort.Strings(unique)

	held := make([]*sync.Mutex, 0, len(unique))
	for _, f := range unique {
		m := l.get(f)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
