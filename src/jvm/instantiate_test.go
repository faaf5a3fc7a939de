/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jacobin-core/corevm/src/classloader"
	"jacobin-core/corevm/src/gcplan"
	"jacobin-core/corevm/src/thread"
)

func TestAllocateZeroInitializesFields(t *testing.T) {
	fx := newRawFixture()
	fx.add(classloader.RawClass{
		Name:      "Point",
		SuperName: "java/lang/Object",
		Fields: []classloader.RawField{
			{Name: "x", Descriptor: "I"},
			{Name: "y", Descriptor: "I"},
			{Name: "label", Descriptor: "Ljava/lang/String;"},
		},
	})
	l := fx.loader()
	point, err := l.LoadClass("Point")
	require.NoError(t, err)

	plan := gcplan.NewTestPlan(thread.NewRegistry())
	obj, err := Allocate(point, plan)
	require.NoError(t, err)
	require.Equal(t, "Point", *obj.Klass)
	require.Len(t, obj.Fields, 3)
	require.Equal(t, int64(0), obj.Fields[0].Fvalue)
	require.Equal(t, int64(0), obj.Fields[1].Fvalue)
	require.Nil(t, obj.Fields[2].Fvalue)
}

func TestAllocateNilClassFails(t *testing.T) {
	plan := gcplan.NewTestPlan(thread.NewRegistry())
	_, err := Allocate(nil, plan)
	require.Error(t, err)
}

func TestAllocateArray(t *testing.T) {
	fx := newRawFixture()
	fx.add(classloader.RawClass{Name: "java/lang/String", SuperName: "java/lang/Object"})
	l := fx.loader()
	str, err := l.LoadClass("java/lang/String")
	require.NoError(t, err)

	arr := &classloader.ClassArray{Component: &str.CommonClass}
	obj, err := AllocateArray(arr, 3)
	require.NoError(t, err)
	require.Len(t, obj.Fields, 3)
	for _, f := range obj.Fields {
		require.Nil(t, f.Fvalue)
	}

	_, err = AllocateArray(arr, -1)
	require.Error(t, err)
}
