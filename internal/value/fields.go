// internal/value/fields.go
package value

// Fields is an insertion-ordered collection of named values. Setting an
// existing name updates it in place without moving it; this order is what
// generated output preserves.
type Fields struct {
	names  []string
	byName map[string]Value
}

func NewFields() *Fields {
	return &Fields{byName: make(map[string]Value)}
}

func (f *Fields) Set(name string, v Value) {
	if _, ok := f.byName[name]; !ok {
		f.names = append(f.names, name)
	}
	f.byName[name] = v
}

func (f *Fields) Get(name string) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	v, ok := f.byName[name]
	return v, ok
}

func (f *Fields) Has(name string) bool {
	if f == nil {
		return false
	}
	_, ok := f.byName[name]
	return ok
}

func (f *Fields) Delete(name string) {
	if f == nil {
		return
	}
	if _, ok := f.byName[name]; !ok {
		return
	}
	delete(f.byName, name)
	for i, n := range f.names {
		if n == name {
			f.names = append(f.names[:i], f.names[i+1:]...)
			break
		}
	}
}

// Names returns the field names in insertion order.
func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}

// Copy returns a shallow copy that can be mutated independently. A nil
// receiver copies to an empty collection.
func (f *Fields) Copy() *Fields {
	out := NewFields()
	if f == nil {
		return out
	}
	for _, name := range f.names {
		out.Set(name, f.byName[name])
	}
	return out
}
