/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jacobin-core/corevm/src/excnames"
	"jacobin-core/corevm/src/thread"
)

func TestLoadAllRegistersEveryMethod(t *testing.T) {
	MethodSignatures = make(map[string]GMeth)
	LoadAll()

	require.Contains(t, MethodSignatures, "java/lang/Thread.registerNatives()V")
	require.Contains(t, MethodSignatures, "java/lang/Thread.sleep(J)V")
}

func TestThreadSleepHonorsInterrupt(t *testing.T) {
	jt := thread.NewJavaThread(1, 0, 0)
	CurrentThread = func() *thread.JavaThread { return jt }
	defer func() { CurrentThread = nil }()

	go func() {
		time.Sleep(10 * time.Millisecond)
		jt.Interrupt()
	}()

	result := threadSleep([]interface{}{int64(5000)})
	blk, ok := result.(GErrBlk)
	require.True(t, ok, "an interrupted sleep must return an error block")
	require.Equal(t, excnames.InterruptedException, blk.ExceptionType)
	require.False(t, jt.IsInterrupted(), "the interrupt flag must be cleared once raised")
}

func TestThreadSleepRejectsNonIntegerDuration(t *testing.T) {
	result := threadSleep([]interface{}{"not a long"})
	blk, ok := result.(GErrBlk)
	require.True(t, ok)
	require.Equal(t, excnames.IllegalArgumentException, blk.ExceptionType)
}

func TestThreadSleepReturnsNilWhenUninterrupted(t *testing.T) {
	CurrentThread = nil
	result := threadSleep([]interface{}{int64(1)})
	require.Nil(t, result)
}

func TestJustReturnIsANoOp(t *testing.T) {
	require.Nil(t, justReturn([]interface{}{"anything"}))
}
