package editor

// Action is one reversible step of the edit timeline. Both closures capture
// entity IDs only and resolve them through the scene when they run, so they
// survive the entity being destroyed and re-instantiated.
type Action struct {
	Label string
	Do    func()
	Undo  func()
}

// History is a linear undo timeline. Actions before the cursor are done,
// actions at or after it have been undone and can be redone until the next
// commit truncates them.
type History struct {
	actions []Action
	cursor  int
	limit   int
}

// NewHistory creates a history holding at most limit actions; zero means
// unbounded. When the limit is hit the oldest action is forgotten.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Commit runs do and records it with its inverse.
func (h *History) Commit(do, undo func()) {
	h.CommitLabeled("", do, undo)
}

// CommitLabeled is Commit with a label shown by history views.
func (h *History) CommitLabeled(label string, do, undo func()) {
	do()
	h.Record(label, do, undo)
}

// Record appends an action whose effect has already been applied.
func (h *History) Record(label string, do, undo func()) {
	clear(h.actions[h.cursor:])
	h.actions = append(h.actions[:h.cursor], Action{Label: label, Do: do, Undo: undo})
	if h.limit > 0 && len(h.actions) > h.limit {
		drop := len(h.actions) - h.limit
		h.actions = append(h.actions[:0], h.actions[drop:]...)
	}
	h.cursor = len(h.actions)
}

// Undo reverts the action before the cursor. It reports false when there is
// nothing to undo.
func (h *History) Undo() bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	h.actions[h.cursor].Undo()
	return true
}

// Redo reapplies the action at the cursor.
func (h *History) Redo() bool {
	if h.cursor == len(h.actions) {
		return false
	}
	h.actions[h.cursor].Do()
	h.cursor++
	return true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.actions) }
func (h *History) Len() int      { return len(h.actions) }
func (h *History) Cursor() int   { return h.cursor }

// Labels lists the label of every recorded action, oldest first.
func (h *History) Labels() []string {
	out := make([]string, len(h.actions))
	for i, a := range h.actions {
		out[i] = a.Label
	}
	return out
}

func (h *History) Clear() {
	clear(h.actions)
	h.actions = h.actions[:0]
	h.cursor = 0
}
