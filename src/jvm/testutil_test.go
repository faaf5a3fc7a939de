/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"jacobin-core/corevm/src/classloader"
)

// rawFixture is a tiny in-memory class universe for the call-in tests: an
// implicit java/lang/Object plus whatever classes the test registers,
// avoiding any dependency on a real class-file parser (out of this core's
// scope).
type rawFixture struct {
	classes map[string]*classloader.RawClass
}

func newRawFixture() *rawFixture {
	return &rawFixture{classes: map[string]*classloader.RawClass{
		"java/lang/Object": {Name: "java/lang/Object"},
	}}
}

func (f *rawFixture) add(raw classloader.RawClass) {
	f.classes[raw.Name] = &raw
}

func (f *rawFixture) loader() *classloader.Loader {
	l := classloader.NewLoader("test", nil)
	l.FetchRaw = func(name string) (*classloader.RawClass, error) {
		if raw, ok := f.classes[name]; ok {
			return raw, nil
		}
		return nil, &classError{Kind: "java/lang/ClassNotFoundException", Msg: name}
	}
	return l
}
