/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package intern

import "fmt"

// TypeKind distinguishes the three Typedef variants of spec.md §3.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindReference
	KindArray
)

// Typedef is the parsed form of one JVM field/method descriptor component.
// It is mutable only in that ResolvedClass is filled in after first
// resolution (spec.md §3); the shape itself never changes post-parse.
type Typedef struct {
	Kind TypeKind

	// valid when Kind == KindPrimitive
	LogSize int    // 0..3: size = 1<<LogSize bytes
	JVMTag  byte   // one of IBSCZFDJ, or V for void

	// valid when Kind == KindReference
	ReferentClass Name

	// valid when Kind == KindArray
	Component *Typedef

	// cached after first resolution; nil until then. Typed as interface{}
	// here to avoid an import cycle with the classloader package, which
	// embeds a *Typedef in every field/param it resolves.
	ResolvedClass interface{}
}

// Descriptor renders the Typedef back to its JVMS 4.3.2 textual form.
func (t *Typedef) Descriptor() string {
	switch t.Kind {
	case KindPrimitive:
		return string(t.JVMTag)
	case KindReference:
		return "L" + t.ReferentClass.String() + ";"
	case KindArray:
		return "[" + t.Component.Descriptor()
	default:
		return "?"
	}
}

var primitiveTags = map[byte]int{
	'Z': 0, 'B': 0, 'C': 1, 'S': 1,
	'I': 2, 'F': 2,
	'J': 3, 'D': 3,
}

// Signdef is a method signature: a list of parameter Typedefs plus a return
// Typedef, per spec.md §3. JIT trampoline pointers are cached here, keyed by
// calling convention, once the JIT collaborator produces them.
type Signdef struct {
	Params []*Typedef
	Return *Typedef

	// cached trampoline pointers, populated by the JIT collaborator on
	// first call. Keys: "static"/"virtual"; values: opaque function
	// pointers represented as uintptr since the core never calls through
	// them itself.
	trampolines map[string]uintptr
}

// SetTrampoline records a JIT-produced call trampoline for the given
// calling convention ("static" or "virtual"), per spec.md §3.
func (s *Signdef) SetTrampoline(convention string, fn uintptr) {
	if s.trampolines == nil {
		s.trampolines = make(map[string]uintptr, 2)
	}
	s.trampolines[convention] = fn
}

// Trampoline returns a previously cached trampoline pointer and whether one
// was set.
func (s *Signdef) Trampoline(convention string) (uintptr, bool) {
	fn, ok := s.trampolines[convention]
	return fn, ok
}

// descriptorParser is a small recursive-descent parser over a raw
// descriptor's bytes, per spec.md §4.A ("a small recursive descent that
// walks the descriptor bytes and yields a tree of Typedef nodes").
type descriptorParser struct {
	names *Table
	src   string
	pos   int
}

// ParseTypedef parses one field/array/primitive descriptor starting at pos
// 0 of desc and interns the resulting tree against names. It is exported
// standalone (not only via Table) because a single descriptor byte range
// may be parsed multiple times from different call sites (fields vs.
// method parameter lists) before any caching is wired up.
func ParseTypedef(names *Table, desc string) (*Typedef, error) {
	p := &descriptorParser{names: names, src: desc}
	t, err := p.parseOne()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("intern: trailing bytes in descriptor %q", desc)
	}
	return t, nil
}

// ParseSigndef parses a full method descriptor "(ARGS)RET" into a Signdef.
func ParseSigndef(names *Table, desc string) (*Signdef, error) {
	p := &descriptorParser{names: names, src: desc}
	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		return nil, fmt.Errorf("intern: method descriptor %q missing '('", desc)
	}
	p.pos++ // consume '('

	sig := &Signdef{}
	for p.pos < len(p.src) && p.src[p.pos] != ')' {
		td, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		sig.Params = append(sig.Params, td)
	}
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("intern: method descriptor %q missing ')'", desc)
	}
	p.pos++ // consume ')'

	ret, err := p.parseOne()
	if err != nil {
		return nil, err
	}
	sig.Return = ret
	return sig, nil
}

func (p *descriptorParser) parseOne() (*Typedef, error) {
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("intern: unexpected end of descriptor %q", p.src)
	}
	c := p.src[p.pos]

	if c == 'V' {
		p.pos++
		return &Typedef{Kind: KindPrimitive, JVMTag: 'V', LogSize: 0}, nil
	}

	if logSize, ok := primitiveTags[c]; ok {
		p.pos++
		return &Typedef{Kind: KindPrimitive, JVMTag: c, LogSize: logSize}, nil
	}

	if c == '[' {
		p.pos++
		comp, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		return &Typedef{Kind: KindArray, Component: comp}, nil
	}

	if c == 'L' {
		start := p.pos + 1
		end := start
		for end < len(p.src) && p.src[end] != ';' {
			end++
		}
		if end >= len(p.src) {
			return nil, fmt.Errorf("intern: unterminated reference descriptor in %q", p.src)
		}
		className := p.src[start:end]
		p.pos = end + 1
		return &Typedef{Kind: KindReference, ReferentClass: p.names.LookupOrCreate(className)}, nil
	}

	return nil, fmt.Errorf("intern: unrecognized descriptor tag %q in %q", c, p.src)
}
