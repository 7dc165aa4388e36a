package ir

import (
	"fmt"
	"strings"
)

// TypeRef names a class or array type by its descriptor, e.g. "Lcom/Foo;"
// or "[I". Refs are interned through a RefPool so that pointer equality
// coincides with descriptor equality; the value table relies on this.
type TypeRef struct {
	Descriptor string
}

func (t *TypeRef) String() string { return t.Descriptor }

// FieldRef names a field symbolically; it may or may not resolve.
type FieldRef struct {
	Class string
	Name  string
	Type  string
}

func (f *FieldRef) String() string {
	return fmt.Sprintf("%s.%s:%s", f.Class, f.Name, f.Type)
}

// MethodRef names a method symbolically.
type MethodRef struct {
	Class string
	Name  string
	Proto string
}

func (m *MethodRef) String() string {
	return fmt.Sprintf("%s.%s:%s", m.Class, m.Name, m.Proto)
}

// OpcodeData is the out-of-line payload of a fill-array-data instruction.
type OpcodeData struct {
	Width    int
	Elements []int64
}

// Field is a resolved field definition.
type Field struct {
	Ref      *FieldRef
	Volatile bool
}

// FieldSearch selects the resolution namespace.
type FieldSearch int

const (
	StaticFieldSearch FieldSearch = iota
	InstanceFieldSearch
)

// FieldResolver resolves field references. A nil result means the field is
// unknown to the resolver; callers treat that conservatively.
type FieldResolver interface {
	ResolveField(ref *FieldRef, search FieldSearch) *Field
}

// MapResolver is a FieldResolver backed by explicit declarations.
type MapResolver struct {
	fields map[string]*Field
}

func NewMapResolver() *MapResolver {
	return &MapResolver{fields: make(map[string]*Field)}
}

// Declare registers a field definition. Redeclaring overwrites.
func (r *MapResolver) Declare(ref *FieldRef, volatile bool) *Field {
	f := &Field{Ref: ref, Volatile: volatile}
	r.fields[ref.String()] = f
	return f
}

func (r *MapResolver) ResolveField(ref *FieldRef, _ FieldSearch) *Field {
	return r.fields[ref.String()]
}

// RefPool interns type, field, and method references. One pool serves one
// compilation unit; everything feeding a single analysis must share it.
type RefPool struct {
	types   map[string]*TypeRef
	fields  map[string]*FieldRef
	methods map[string]*MethodRef
}

func NewRefPool() *RefPool {
	return &RefPool{
		types:   make(map[string]*TypeRef),
		fields:  make(map[string]*FieldRef),
		methods: make(map[string]*MethodRef),
	}
}

func (p *RefPool) Type(descriptor string) *TypeRef {
	if t, ok := p.types[descriptor]; ok {
		return t
	}
	t := &TypeRef{Descriptor: descriptor}
	p.types[descriptor] = t
	return t
}

func (p *RefPool) Field(class, name, typ string) *FieldRef {
	key := class + "." + name + ":" + typ
	if f, ok := p.fields[key]; ok {
		return f
	}
	f := &FieldRef{Class: class, Name: name, Type: typ}
	p.fields[key] = f
	return f
}

// ParseFieldRef interns a ref written as "Lcom/Foo;.name:I".
func (p *RefPool) ParseFieldRef(s string) (*FieldRef, error) {
	class, name, typ, err := splitRef(s)
	if err != nil {
		return nil, fmt.Errorf("malformed field ref %q", s)
	}
	return p.Field(class, name, typ), nil
}

// ParseMethodRef interns a ref written as "Lcom/Foo;.name:(II)I".
func (p *RefPool) ParseMethodRef(s string) (*MethodRef, error) {
	class, name, proto, err := splitRef(s)
	if err != nil {
		return nil, fmt.Errorf("malformed method ref %q", s)
	}
	return p.Method(class, name, proto), nil
}

func splitRef(s string) (class, name, tail string, err error) {
	i := strings.Index(s, ";.")
	if i < 0 {
		return "", "", "", fmt.Errorf("missing class separator")
	}
	class, rest := s[:i+1], s[i+2:]
	j := strings.Index(rest, ":")
	if j <= 0 || j == len(rest)-1 {
		return "", "", "", fmt.Errorf("missing name separator")
	}
	return class, rest[:j], rest[j+1:], nil
}

func (p *RefPool) Method(class, name, proto string) *MethodRef {
	key := class + "." + name + ":" + proto
	if m, ok := p.methods[key]; ok {
		return m
	}
	m := &MethodRef{Class: class, Name: name, Proto: proto}
	p.methods[key] = m
	return m
}
