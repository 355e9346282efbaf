package nav

// Descriptor asks for one panel to be shown. Panel names the panel for renderers;
// Options is an opaque payload the stack never inspects.
type Descriptor struct {
	Panel   string
	Options any
}

// Reader is the read-only view of a Stack handed to controllers during a round.
type Reader interface {
	// Len returns the number of entries.
	Len() int
	// Top returns the current top entry, or false when the stack is empty.
	Top() (Descriptor, bool)
	// At returns the entry at index i (0 is the bottom).
	At(i int) (Descriptor, error)
	// Entries returns a copy of all entries, bottom first.
	Entries() []Descriptor
}
