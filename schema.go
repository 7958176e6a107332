package depot

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Kinds is a set of declared kinds keyed by name.
type Kinds map[string]*Kind

type kindDecl struct {
	Name  string `yaml:"name"`
	DType string `yaml:"dtype"`
	Shape []int  `yaml:"shape"`
}

type kindsDocument struct {
	Kinds []kindDecl `yaml:"kinds"`
}

// LoadKinds declares the kinds listed in a YAML document of the form
//
//	kinds:
//	  - name: position
//	    dtype: float32
//	    shape: [2]
//	  - name: locked
//
// An entry without dtype and shape is a tag.
func LoadKinds(r io.Reader) (Kinds, error) {
	var doc kindsDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode kinds: %w", err)
	}

	kinds := make(Kinds, len(doc.Kinds))
	for i, decl := range doc.Kinds {
		if decl.Name == "" {
			return nil, fmt.Errorf("kind %d: missing name", i)
		}
		if _, dup := kinds[decl.Name]; dup {
			return nil, fmt.Errorf("kind %q declared twice", decl.Name)
		}
		elem, err := ParseElemType(decl.DType)
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", decl.Name, err)
		}
		k, err := DeclareKind(decl.Name, elem, decl.Shape...)
		if err != nil {
			return nil, err
		}
		kinds[decl.Name] = k
	}
	return kinds, nil
}

// Get returns the kind declared under name.
func (ks Kinds) Get(name string) (*Kind, error) {
	k, ok := ks[name]
	if !ok {
		return nil, fmt.Errorf("kind %q is not declared", name)
	}
	return k, nil
}

func (ks Kinds) Names() []string {
	names := make([]string, 0, len(ks))
	for name := range ks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
