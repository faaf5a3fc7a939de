/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"fmt"

	"jacobin-core/corevm/src/intern"
	"jacobin-core/corevm/src/trace"
)

// RawClass is what the external class-file parser collaborator hands the
// loader: already parsed, format-checked bytes (spec.md §1 excludes the
// parser itself from this core's scope; the loader's invariants start
// here). Field/method ordering is preserved from the class file.
type RawClass struct {
	Name       string
	SuperName  string // "" only for java/lang/Object
	Interfaces []string
	Access     AccessFlags
	Fields     []RawField
	Methods    []RawMethod
	CP         *CPool
	SourceFile string
	JDKVersion [2]int
}

type RawField struct {
	Name       string
	Descriptor string
	IsStatic   bool
	ConstValue interface{} // non-nil iff a ConstantValue attribute was present
}

type RawMethod struct {
	Name       string
	Descriptor string
	Access     AccessFlags
	IsStatic   bool
	IsAbstract bool
	IsFinal    bool
	Exceptions []string
	HasClinitBody bool // true only for "<clinit>" with a non-empty Code attribute
}

// InitToken identifies "the thread currently running this class's
// <clinit>" for the recursive-initialize short-circuit of spec.md §4.E. The
// core never looks inside it; the interpreter/JIT collaborator supplies a
// stable, comparable value per OS thread (e.g. *thread.JavaThread).
type InitToken = interface{}

// Loader drives classes through the lifecycle of spec.md §4.E. One Loader
// exists per classloader (bootstrap/extension/app), matching the teacher's
// three-classloader setup in classloader.go's Init().
type Loader struct {
	Name   string
	Parent *Loader

	Names   *intern.Table
	Classes *ClassTable

	// FetchRaw retrieves and parses (but does not link) the named class's
	// bytes, delegating to whatever collaborator owns the classpath/jmod/jar
	// search (spec.md §1 scope line: out of this core's scope beyond the
	// loader invariants that consume the result).
	FetchRaw func(name string) (*RawClass, error)

	// RunClinit executes a class's <clinit> method body via the
	// interpreter/JIT collaborator (spec.md §6's call-in contract); the
	// core only owns the surrounding state machine and locking.
	RunClinit func(c *Class) error
}

// NewLoader creates a loader with its own name/type interner and class
// table, as spec.md §4.A specifies ("a per-loader hash table").
func NewLoader(name string, parent *Loader) *Loader {
	return &Loader{
		Name:    name,
		Parent:  parent,
		Names:   intern.NewTable(),
		Classes: NewClassTable(),
	}
}

// LoadClass returns the named class, loading and resolving it if it is not
// already installed, per spec.md §4.C/§4.E. A class that was already
// installed (or that another goroutine installed first) is returned as it
// is, without resolving it, so it may still be in StatusLoaded; call
// Resolve to drive it further.
func (l *Loader) LoadClass(name string) (*Class, error) {
	if existing := l.Classes.Lookup(name); existing != nil {
		return existing, nil
	}

	if l.FetchRaw == nil {
		return nil, noClassDefFound("loader " + l.Name + " has no FetchRaw collaborator configured")
	}
	raw, err := l.FetchRaw(name)
	if err != nil {
		return nil, classNotFound(name + ": " + err.Error())
	}

	cls := buildFromRaw(l, raw)
	installed, won := l.Classes.Insert(name, cls)
	if !won {
		// another goroutine's loader raced us and won; use its class
		// instead, per spec.md §4.C's CAS-guarded insert invariant.
		return installed, nil
	}

	if err := l.Resolve(installed, map[string]bool{}); err != nil {
		return installed, err
	}
	return installed, nil
}

func buildFromRaw(l *Loader, raw *RawClass) *Class {
	name := l.Names.LookupOrCreate(raw.Name)
	c := NewClass(name, l)
	c.Access = raw.Access
	c.CP = raw.CP
	c.SourceFile = raw.SourceFile
	c.JDKVersion = raw.JDKVersion
	c.pendingSuperName = raw.SuperName
	c.pendingInterfaceNames = raw.Interfaces

	for _, f := range raw.Fields {
		td, _ := intern.ParseTypedef(l.Names, f.Descriptor)
		slot := &FieldSlot{Name: f.Name, Descriptor: f.Descriptor, Type: td, IsStatic: f.IsStatic, ConstValue: f.ConstValue}
		if f.IsStatic {
			slot.Offset = len(c.StaticFields)
			c.StaticFields = append(c.StaticFields, slot)
		} else {
			slot.Offset = len(c.Fields)
			c.Fields = append(c.Fields, slot)
		}
	}

	hasClinit := false
	for _, m := range raw.Methods {
		sig, _ := intern.ParseSigndef(l.Names, m.Descriptor)
		method := &Method{
			Name: m.Name, Descriptor: m.Descriptor, Sig: sig, Access: m.Access,
			IsStatic: m.IsStatic, IsAbstract: m.IsAbstract, IsFinal: m.IsFinal,
			Exceptions: m.Exceptions, VTOffset: -1,
		}
		key := m.Name + m.Descriptor
		if m.IsStatic || m.Name == "<init>" || m.Name == "<clinit>" {
			c.SMethods[key] = method
		} else {
			c.VMethods[key] = method
		}
		if m.Name == "<clinit>" && m.HasClinitBody {
			hasClinit = true
		}
	}
	if hasClinit {
		c.ClInit = 1 // types.ClInitNotRun, avoiding an import cycle with types for this one byte
	}

	return c
}

// Resolve implements spec.md §4.E's resolve operation: if already
// >=resolved, return; otherwise transition loaded->resolving, recursively
// resolve super/interfaces (detecting ClassCircularityError via inProgress),
// build the VT, and CAS to resolved.
func (l *Loader) Resolve(c *Class, inProgress map[string]bool) error {
	if c.Status() == StatusErroneous {
		return noClassDefFound(c.Name.String() + " is in error state")
	}
	if c.Status() >= StatusResolved {
		return nil
	}

	name := c.Name.String()
	if inProgress[name] {
		return classCircularity(name)
	}
	inProgress[name] = true

	if !c.casStatus(StatusLoaded, StatusResolving) {
		// another goroutine is already driving this class; wait for it.
		c.Lock()
		for c.Status() == StatusResolving {
			c.Wait()
		}
		c.Unlock()
		if c.Status() == StatusErroneous {
			return noClassDefFound(name + " failed resolution on another thread")
		}
		return nil
	}

	if err := l.resolveSupersAndInterfaces(c, inProgress); err != nil {
		c.setStatus(StatusErroneous)
		c.initErr = err
		return err
	}

	applyStaticFieldDefaults(c)
	BuildVirtualTable(c)

	if !c.casStatus(StatusResolving, StatusResolved) {
		return noClassDefFound(name + ": concurrent status transition raced resolve()")
	}
	trace.Trace("classloader: resolved " + name)
	return nil
}

func (l *Loader) resolveSupersAndInterfaces(c *Class, inProgress map[string]bool) error {
	if c.Name.String() == "java/lang/Object" {
		return nil
	}

	superName := superNameOf(c)
	if superName != "" {
		super, err := l.LoadClass(superName)
		if err != nil {
			return noClassDefFound("resolving superclass " + superName + " of " + c.Name.String() + ": " + err.Error())
		}
		if err := l.Resolve(super, inProgress); err != nil {
			return err
		}
		c.Super = super
	}

	for _, ifaceName := range interfaceNamesOf(c) {
		iface, err := l.LoadClass(ifaceName)
		if err != nil {
			return noClassDefFound("resolving interface " + ifaceName + " of " + c.Name.String() + ": " + err.Error())
		}
		if err := l.Resolve(iface, inProgress); err != nil {
			return err
		}
		c.Interfaces = append(c.Interfaces, iface)
	}
	return nil
}

// applyStaticFieldDefaults implements spec.md §4.E's static-field default
// rule: a ConstantValue loads directly into the static slot; otherwise the
// slot is zero-initialized.
func applyStaticFieldDefaults(c *Class) {
	c.StaticArea = make([]interface{}, len(c.StaticFields))
	for i, f := range c.StaticFields {
		if f.ConstValue != nil {
			c.StaticArea[i] = f.ConstValue
			continue
		}
		c.StaticArea[i] = zeroValueFor(f.Descriptor)
	}
}

func zeroValueFor(descriptor string) interface{} {
	if len(descriptor) == 0 {
		return nil
	}
	switch descriptor[0] {
	case 'L', '[':
		return nil
	case 'D', 'F':
		return 0.0
	default:
		return int64(0)
	}
}

// Initialize implements spec.md §4.E's initialize operation in full,
// including the single-entry guarantee of Property 5.
func (l *Loader) Initialize(c *Class, caller InitToken) error {
	if c.Status() == StatusReady {
		return nil
	}
	if c.Status() == StatusErroneous {
		return noClassInitializerError(c.Name.String())
	}

	if owner, ok := c.clinitOwner.Load().(InitToken); ok && owner == caller && c.Status() == StatusInClinit {
		return nil // recursive <clinit>-in-progress re-entry, spec.md §4.E
	}

	c.Lock()
	for c.Status() == StatusInClinit {
		c.Wait()
	}
	if c.Status() == StatusReady {
		c.Unlock()
		return nil
	}
	if c.Status() == StatusErroneous {
		c.Unlock()
		return noClassInitializerError(c.Name.String())
	}
	c.setStatus(StatusInClinit)
	c.clinitOwner.Store(caller)
	c.Unlock()

	if c.Super != nil && !c.Access.Interface {
		if err := l.Initialize(c.Super, caller); err != nil {
			c.Lock()
			c.setStatus(StatusErroneous)
			c.initErr = err
			c.Unlock()
			return err
		}
	}

	var runErr error
	if c.ClInit != 0 && l.RunClinit != nil {
		runErr = l.RunClinit(c)
	}

	c.Lock()
	defer c.Unlock()
	if runErr != nil {
		c.setStatus(StatusErroneous)
		wrapped := runErr
		if !isAlreadyError(runErr) {
			wrapped = exceptionInInitializer(fmt.Sprintf("%s.<clinit>: %v", c.Name.String(), runErr))
		}
		c.initErr = wrapped
		return wrapped
	}
	c.ClInit = 3 // types.ClInitRun
	c.setStatus(StatusReady)
	trace.Trace("classloader: " + c.Name.String() + " is ready")
	return nil
}

func isAlreadyError(err error) bool {
	ce, ok := err.(*ClassError)
	return ok && ce.Kind != ""
}

func superNameOf(c *Class) string {
	return c.pendingSuperName
}

func interfaceNamesOf(c *Class) []string {
	return c.pendingInterfaceNames
}
