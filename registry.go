// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dyn

import "sync"

// shardCount is the number of goid-hashed shards guarding arena lookup.
// 64 keeps the shard table small while lock contention stays negligible
// for typical goroutine counts.
const shardCount = 64

// arena holds the binding stacks of a single goroutine, keyed by variable
// serial. Stacks never hold zero elements: a stack is created on first
// push and released when its last binding pops. Only the owning goroutine
// reads or writes an arena, so access beyond the shard-map lookup needs
// no lock.
type arena struct {
	stacks map[Serial][]any
}

// shard guards one slice of the goid→arena mapping.
type shard struct {
	mu     sync.Mutex
	arenas map[int64]*arena
}

var shards [shardCount]shard

func shardOf(g int64) *shard {
	return &shards[uint64(g)%shardCount]
}

// arenaOf returns g's arena, or nil when g has no live bindings.
func arenaOf(g int64) *arena {
	s := shardOf(g)
	s.mu.Lock()
	a := s.arenas[g]
	s.mu.Unlock()
	return a
}

// arenaFor returns g's arena, creating it on first push.
func arenaFor(g int64) *arena {
	s := shardOf(g)
	s.mu.Lock()
	a := s.arenas[g]
	if a == nil {
		if s.arenas == nil {
			s.arenas = make(map[int64]*arena)
		}
		a = &arena{stacks: make(map[Serial][]any)}
		s.arenas[g] = a
	}
	s.mu.Unlock()
	return a
}

// releaseArena drops g's arena once its last stack empties. An empty stack
// is observationally identical to a missing one (only top-of-stack reads
// exist), so reclaiming here keeps finished goroutines from pinning
// arenas without changing any visible behavior.
func releaseArena(g int64) {
	s := shardOf(g)
	s.mu.Lock()
	delete(s.arenas, g)
	s.mu.Unlock()
}

// push appends value to the stack of serial on goroutine g.
func push(g int64, serial Serial, value any) {
	a := arenaFor(g)
	a.stacks[serial] = append(a.stacks[serial], value)
}

// pop removes the innermost binding of serial on goroutine g.
// Pops are paired to pushes by construction; an unpaired pop is a broken
// internal invariant, never a user-facing error.
func pop(g int64, serial Serial) {
	a := arenaOf(g)
	if a == nil || len(a.stacks[serial]) == 0 {
		panic("dyn: pop on empty binding stack")
	}
	st := a.stacks[serial]
	st[len(st)-1] = nil
	st = st[:len(st)-1]
	if len(st) == 0 {
		delete(a.stacks, serial)
		if len(a.stacks) == 0 {
			releaseArena(g)
		}
		return
	}
	a.stacks[serial] = st
}

// peek reads the innermost binding of serial on goroutine g.
// Presence is stack occupancy: a bound zero value reports ok=true.
func peek(g int64, serial Serial) (any, bool) {
	a := arenaOf(g)
	if a == nil {
		return nil, false
	}
	st := a.stacks[serial]
	if len(st) == 0 {
		return nil, false
	}
	return st[len(st)-1], true
}
