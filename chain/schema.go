package chain

import "fmt"

// Schema is a fixed ordered list of parameter names. It is validated
// once at construction and then applied to every output artifact, so
// chain columns and labels cannot silently drift apart.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema validates the parameter names and returns a schema.
// Names must be non-empty and unique.
func NewSchema(names []string) (*Schema, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("schema: no parameter names")
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("schema: empty name at position %d", i)
		}
		if _, ok := index[name]; ok {
			return nil, fmt.Errorf("schema: duplicate name %q", name)
		}
		index[name] = i
	}
	return &Schema{names: names, index: index}, nil
}

// Len returns the number of parameters.
func (s *Schema) Len() int {
	return len(s.names)
}

// Names returns a copy of the ordered parameter names.
func (s *Schema) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Name returns the name of the i-th parameter.
func (s *Schema) Name(i int) string {
	return s.names[i]
}

// Index returns the column of a named parameter.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Check verifies that the chain width matches the schema.
func (s *Schema) Check(c *Chain) error {
	if c.Dim() != len(s.names) {
		return fmt.Errorf("schema: %d names for a chain of %d parameters", len(s.names), c.Dim())
	}
	return nil
}
