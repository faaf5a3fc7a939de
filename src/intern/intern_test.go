/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package intern

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupOrCreateReturnsPointerEqualHandles(t *testing.T) {
	tbl := NewTable()
	a := tbl.LookupOrCreate("java/lang/Object")
	b := tbl.LookupOrCreate("java/lang/Object")
	require.True(t, a.Equal(b))
	require.Equal(t, "java/lang/Object", a.String())
}

func TestLookupMissReturnsFalse(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Lookup("not/interned/Yet")
	require.False(t, ok)
}

func TestConcurrentInternConverges(t *testing.T) {
	tbl := NewTable()
	var wg sync.WaitGroup
	results := make([]Name, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tbl.LookupOrCreate("java/util/HashMap")
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		require.True(t, results[0].Equal(results[i]))
	}
}

func TestInternalJavaNameConversion(t *testing.T) {
	tbl := NewTable()
	internal := tbl.LookupOrCreate("java/lang/String")
	dotted := tbl.InternalToJava(internal)
	require.Equal(t, "java.lang.String", dotted.String())
	back := tbl.JavaToInternal(dotted)
	require.True(t, back.Equal(internal))
}

func TestParseTypedefPrimitiveReferenceArray(t *testing.T) {
	tbl := NewTable()

	prim, err := ParseTypedef(tbl, "I")
	require.NoError(t, err)
	require.Equal(t, KindPrimitive, prim.Kind)
	require.Equal(t, byte('I'), prim.JVMTag)

	ref, err := ParseTypedef(tbl, "Ljava/lang/String;")
	require.NoError(t, err)
	require.Equal(t, KindReference, ref.Kind)
	require.Equal(t, "java/lang/String", ref.ReferentClass.String())

	arr, err := ParseTypedef(tbl, "[[I")
	require.NoError(t, err)
	require.Equal(t, KindArray, arr.Kind)
	require.Equal(t, KindArray, arr.Component.Kind)
	require.Equal(t, KindPrimitive, arr.Component.Component.Kind)
}

func TestParseTypedefRejectsTrailingBytes(t *testing.T) {
	tbl := NewTable()
	_, err := ParseTypedef(tbl, "II")
	require.Error(t, err)
}

func TestParseSigndef(t *testing.T) {
	tbl := NewTable()
	sig, err := ParseSigndef(tbl, "(ILjava/lang/String;)V")
	require.NoError(t, err)
	require.Len(t, sig.Params, 2)
	require.Equal(t, KindPrimitive, sig.Params[0].Kind)
	require.Equal(t, KindReference, sig.Params[1].Kind)
	require.Equal(t, byte('V'), sig.Return.JVMTag)
}

func TestSigndefTrampolineCache(t *testing.T) {
	sig := &Signdef{}
	_, ok := sig.Trampoline("virtual")
	require.False(t, ok)

	sig.SetTrampoline("virtual", 0xdeadbeef)
	fn, ok := sig.Trampoline("virtual")
	require.True(t, ok)
	require.Equal(t, uintptr(0xdeadbeef), fn)
}
