package canvas

// Schema declares the user-defined uniforms of one shader program as an
// ordered list of (name, type, initial value) entries. Entries are assigned
// contiguous zero-based indices in declaration order; the index is stable
// for the lifetime of the schema.
type Schema struct {
	decls []schemaDecl
}

type schemaDecl struct {
	name  string
	build func(program uint32) applier
}

type applier interface {
	Apply()
}

// Slot is a typed handle to one schema entry. Because a Slot can only be
// minted by Declare, accessing an index with the wrong value type is a
// compile error rather than a runtime one.
type Slot[T Value] struct {
	index int
}

// Index returns the zero-based index assigned at declaration time.
func (s Slot[T]) Index() int { return s.index }

// Declare appends an entry to the schema and returns its typed handle.
func Declare[T Value](s *Schema, name string, initial T) Slot[T] {
	slot := Slot[T]{index: len(s.decls)}
	s.decls = append(s.decls, schemaDecl{
		name: name,
		build: func(program uint32) applier {
			return NewUniform(program, name, initial)
		},
	})
	return slot
}

// Len returns the number of declared entries.
func (s *Schema) Len() int { return len(s.decls) }

// Names returns the declared uniform names in index order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.decls))
	for i, d := range s.decls {
		names[i] = d.name
	}
	return names
}

// Initialize builds one Uniform per entry against program. The resulting
// Set lives as long as the program it was built for.
func (s *Schema) Initialize(program uint32) *Set {
	uniforms := make([]applier, len(s.decls))
	for i, d := range s.decls {
		uniforms[i] = d.build(program)
	}
	return &Set{uniforms: uniforms}
}

// Set is the initialized uniform collection of one shader program.
type Set struct {
	uniforms []applier
}

// ApplyAll applies every uniform once, in declaration order. The order does
// not affect correctness but keeps GPU writes deterministic.
func (s *Set) ApplyAll() {
	for _, u := range s.uniforms {
		u.Apply()
	}
}

// At returns the value held for slot. The slot must come from the schema
// this set was initialized from.
func At[T Value](s *Set, slot Slot[T]) T {
	return s.uniforms[slot.index].(*Uniform[T]).Value()
}

// SetAt replaces the value held for slot without touching the GPU; the new
// value is pushed by the next ApplyAll.
func SetAt[T Value](s *Set, slot Slot[T], value T) {
	s.uniforms[slot.index].(*Uniform[T]).SetValue(value)
}
