/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import "hash/fnv"

// IMTSize is the fixed bucket count of every class's interface method
// table, per spec.md §3 ("fixed-width table keyed by hash(name,descriptor)
// mod N").
const IMTSize = 64

// imtBucket is either a single direct method pointer or, on hash collision,
// a conflict list scanned linearly at invokeinterface time.
type imtBucket struct {
	direct   *Method
	conflict []*Method
}

// IMT is the interface method table used by invokeinterface, per spec.md
// §3/§4.D.
type IMT struct {
	buckets [IMTSize]imtBucket
}

func imtHash(name, descriptor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte(descriptor))
	return int(h.Sum32() % IMTSize)
}

// Lookup resolves an interface call by (name, descriptor), returning nil if
// no reachable virtual method matches (the caller raises AbstractMethodError
// or NoSuchMethodError, per spec.md §7).
func (imt *IMT) Lookup(name, descriptor string) *Method {
	b := &imt.buckets[imtHash(name, descriptor)]
	if b.direct != nil && b.direct.Name == name && b.direct.Descriptor == descriptor {
		return b.direct
	}
	for _, m := range b.conflict {
		if m.Name == name && m.Descriptor == descriptor {
			return m
		}
	}
	return nil
}

func (imt *IMT) insert(m *Method) {
	b := &imt.buckets[imtHash(m.Name, m.Descriptor)]
	switch {
	case b.direct == nil && len(b.conflict) == 0:
		b.direct = m
	case b.direct != nil:
		b.conflict = append(b.conflict, b.direct, m)
		b.direct = nil
	default:
		b.conflict = append(b.conflict, m)
	}
}

// BuildIMT places every virtual method reachable from c (including
// inherited and interface-defaulted) into its hash slot, per spec.md §4.D
// step 6. Only called for non-abstract classes.
func BuildIMT(c *Class) {
	imt := &IMT{}
	seen := make(map[string]bool)

	var walk func(*Class)
	walk = func(cls *Class) {
		if cls == nil {
			return
		}
		for _, m := range cls.VMethods {
			key := m.Name + m.Descriptor
			if seen[key] || m.IsAbstract {
				continue
			}
			seen[key] = true
			imt.insert(m)
		}
		walk(cls.Super)
	}
	walk(c)

	var walkIface func(*Class)
	walkIface = func(iface *Class) {
		for _, m := range iface.VMethods {
			key := m.Name + m.Descriptor
			if seen[key] {
				continue
			}
			resolved, _ := c.LookupMethod(m.Name, m.Descriptor, false, true, false)
			if resolved != nil && !resolved.IsAbstract {
				seen[key] = true
				imt.insert(resolved)
			} else if !m.IsAbstract { // interface default method
				seen[key] = true
				imt.insert(m)
			}
		}
		for _, sup := range iface.Interfaces {
			walkIface(sup)
		}
	}
	for cls := c; cls != nil; cls = cls.Super {
		for _, iface := range cls.Interfaces {
			walkIface(iface)
		}
	}

	c.VT.IMT = imt
}
