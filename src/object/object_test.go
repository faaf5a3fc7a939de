/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectToStringCoversEveryFieldKind(t *testing.T) {
	obj := MakeEmptyObject()
	klassType := filepath.FromSlash("java/lang/madeUpClass")
	obj.Klass = &klassType

	obj.FieldTable["myFloat"] = &Field{Ftype: "F", Fvalue: 1.0}
	obj.FieldTable["myDouble"] = &Field{Ftype: "D", Fvalue: 2.0}
	obj.FieldTable["myInt"] = &Field{Ftype: "I", Fvalue: 42}
	obj.FieldTable["myLong"] = &Field{Ftype: "J", Fvalue: int64(42)}
	obj.FieldTable["myShort"] = &Field{Ftype: "S", Fvalue: 42}
	obj.FieldTable["myByte"] = &Field{Ftype: "B", Fvalue: 0x61}
	obj.FieldTable["myTrue"] = &Field{Ftype: "Z", Fvalue: true}
	obj.FieldTable["myFalse"] = &Field{Ftype: "Z", Fvalue: false}
	obj.FieldTable["myChar"] = &Field{Ftype: "C", Fvalue: 'C'}
	obj.FieldTable["myString"] = &Field{Ftype: "Ljava/lang/String;", Fvalue: "Hello, Unka Andoo !"}

	str := obj.ToString()
	require.NotEmpty(t, str)
	require.Contains(t, str, "java/lang/madeUpClass")
}

func TestObjectToStringCompactString(t *testing.T) {
	literal := "This is a compact string from a Go string"
	csObj := CreateCompactStringFromGoString(&literal)
	retStr := csObj.ToString()
	require.NotEmpty(t, retStr)
	require.Contains(t, retStr, literal)
}

func TestObjectToStringOrdinalFields(t *testing.T) {
	obj := MakeEmptyObject()
	klassType := filepath.FromSlash("java/lang/madeUpClass")
	obj.Klass = &klassType

	obj.Fields = append(obj.Fields, Field{Ftype: "F", Fvalue: 1.0})
	require.NotEmpty(t, obj.ToString())

	obj.Fields[0] = Field{Ftype: "D", Fvalue: 2.0}
	require.NotEmpty(t, obj.ToString())

	obj.Fields[0] = Field{Ftype: "I", Fvalue: 42}
	require.NotEmpty(t, obj.ToString())

	obj.Fields[0] = Field{Ftype: "J", Fvalue: int64(42)}
	require.NotEmpty(t, obj.ToString())

	obj.Fields[0] = Field{Ftype: "S", Fvalue: 42}
	require.NotEmpty(t, obj.ToString())

	obj.Fields[0] = Field{Ftype: "B", Fvalue: 0x61}
	require.NotEmpty(t, obj.ToString())

	obj.Fields[0] = Field{Ftype: "Z", Fvalue: true}
	require.NotEmpty(t, obj.ToString())

	obj.Fields[0] = Field{Ftype: "Z", Fvalue: false}
	require.NotEmpty(t, obj.ToString())

	obj.Fields[0] = Field{Ftype: "C", Fvalue: 'C'}
	require.NotEmpty(t, obj.ToString())
}

func TestMonitorThinPathReentrant(t *testing.T) {
	obj := NewObject("java/lang/Object", NewFatLockTable())
	obj.MonitorEnter(1)
	obj.MonitorEnter(1) // reentrant
	obj.MonitorExit(1)
	obj.MonitorExit(1)
}

func TestMonitorExitByNonOwnerPanics(t *testing.T) {
	obj := NewObject("java/lang/Object", NewFatLockTable())
	obj.MonitorEnter(1)
	defer func() {
		require.NotNil(t, recover())
	}()
	obj.MonitorExit(2)
}

func TestMonitorNotifyWakesWaiter(t *testing.T) {
	obj := NewObject("java/lang/Object", NewFatLockTable())

	woke := make(chan bool, 1)
	holding := make(chan struct{})
	obj.MonitorEnter(1)
	go func() {
		obj.MonitorEnter(2)
		close(holding)
		notified, _ := obj.Wait(2, 0, nil)
		woke <- notified
		obj.MonitorExit(2)
	}()

	// Releasing lets the goroutine acquire the monitor. Once it reports
	// that it holds it, the second MonitorEnter below can only return after
	// its Wait() has linked it into the ring and released the monitor
	// again, so Notify() below is guaranteed to see it.
	obj.MonitorExit(1)
	<-holding
	obj.MonitorEnter(1)
	obj.Notify()
	obj.MonitorExit(1)

	require.True(t, <-woke)
}

func TestIdentityHashStable(t *testing.T) {
	h := &Header{}
	first := h.EnsureHash()
	second := h.EnsureHash()
	require.Equal(t, first, second)
}
