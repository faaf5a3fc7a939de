/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"jacobin-core/corevm/src/classloader"
)

func TestClassInitializeRunsClinitOnce(t *testing.T) {
	fx := newRawFixture()
	fx.add(classloader.RawClass{
		Name:      "Counter",
		SuperName: "java/lang/Object",
		Methods: []classloader.RawMethod{
			{Name: "<clinit>", Descriptor: "()V", IsStatic: true, HasClinitBody: true},
		},
	})
	l := fx.loader()
	counter, err := l.LoadClass("Counter")
	require.NoError(t, err)

	runs := 0
	l.RunClinit = func(c *classloader.Class) error {
		runs++
		return nil
	}

	require.NoError(t, ClassInitialize(counter, "caller-1"))
	require.NoError(t, ClassInitialize(counter, "caller-2"))
	require.Equal(t, 1, runs, "class_initialize must be idempotent")
	require.Equal(t, classloader.StatusReady, counter.Status())
}

func TestClassInitializePropagatesClinitFailure(t *testing.T) {
	fx := newRawFixture()
	fx.add(classloader.RawClass{
		Name:      "Broken",
		SuperName: "java/lang/Object",
		Methods: []classloader.RawMethod{
			{Name: "<clinit>", Descriptor: "()V", IsStatic: true, HasClinitBody: true},
		},
	})
	l := fx.loader()
	broken, err := l.LoadClass("Broken")
	require.NoError(t, err)

	l.RunClinit = func(c *classloader.Class) error {
		return errors.New("boom")
	}

	err = ClassInitialize(broken, "caller-1")
	require.Error(t, err)
	require.Equal(t, classloader.StatusErroneous, broken.Status())
}
