/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

package gfunction

import (
	"time"

	"jacobin-core/corevm/src/excnames"
)

func init() { register(Load_Lang_Thread) }

/*
 Each object or library that has Go methods contains a reference to MethodSignatures,
 which contain data needed to insert the go method into the MTable of the currently
 executing JVM. MethodSignatures is a map whose key is the fully qualified name and
 type of the method (that is, the method's full signature) and a value consisting of
 a struct of an int (the number of slots to pop off the caller's operand stack when
 creating the new frame and a function. All methods have the same signature, regardless
 of the signature of their Java counterparts. That signature is that it accepts a slice
 of interface{} and returns an interface{}. The accepted slice can be empty and the
 return interface can be nil. This covers all Java functions. (Objects are returned
 as a 64-bit address in this scheme (as they are in the JVM).

 The passed-in slice contains one entry for every parameter passed to the method (which
 could mean an empty slice).
*/

func Load_Lang_Thread() {

	MethodSignatures["java/lang/Thread.registerNatives()V"] =
		GMeth{
			ParamSlots: 0,
			GFunction:  justReturn,
		}

	MethodSignatures["java/lang/Thread.sleep(J)V"] =
		GMeth{
			ParamSlots: 1,
			GFunction:  threadSleep,
		}

}

// sleepPollInterval bounds how long a single time.Sleep call waits before
// threadSleep rechecks the calling thread's interrupt flag, so Interrupt()
// wakes a sleeping thread promptly instead of only at the end of its sleep.
const sleepPollInterval = 50 * time.Millisecond

// "java/lang/Thread.sleep(J)V"
func threadSleep(params []interface{}) interface{} {
	sleepTime, ok := params[0].(int64)
	if !ok {
		errMsg := "Parameter must be an int64 (long)"
		return getGErrBlk(excnames.IllegalArgumentException, errMsg)
	}

	remaining := time.Duration(sleepTime) * time.Millisecond
	jt := CurrentThread
	for remaining > 0 {
		step := sleepPollInterval
		if step > remaining {
			step = remaining
		}
		time.Sleep(step)
		remaining -= step

		if jt != nil {
			if t := jt(); t != nil && t.IsInterrupted() {
				t.ClearInterrupt()
				return getGErrBlk(excnames.InterruptedException, "sleep interrupted")
			}
		}
	}
	return nil
}
