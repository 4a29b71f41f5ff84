package engine

import "github.com/painterhq/painter/internal/scene"

// snapshot is a scene state the user can step back to. rev is the engine
// revision the scene had, so undoing to the saved state clears the dirty flag.
type snapshot struct {
	scene *scene.Scene
	rev   uint64
}

// History is a bounded undo/redo stack of whole scene snapshots.
// Snapshots are never mutated once pushed.
type History struct {
	depth int
	undo  []snapshot
	redo  []snapshot
}

// NewHistory keeps at most depth undo steps. A depth of zero disables undo.
func NewHistory(depth int) *History {
	return &History{depth: max(depth, 0)}
}

// Push records the state before a mutation and forgets the redo stack.
func (h *History) Push(s snapshot) {
	h.redo = nil
	if h.depth == 0 {
		return
	}
	if len(h.undo) == h.depth {
		// Oldest entry goes first.
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:len(h.undo)-1]
	}
	h.undo = append(h.undo, s)
}

// Undo pops the previous state and parks current on the redo stack.
func (h *History) Undo(current snapshot) (snapshot, bool) {
	if len(h.undo) == 0 {
		return snapshot{}, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return prev, true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current snapshot) (snapshot, bool) {
	if len(h.redo) == 0 {
		return snapshot{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return next, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Reset drops every entry.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}
