/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package globals holds the process-wide VM configuration singleton,
// mirroring the teacher's jacobin/globals package: one struct, populated
// once from the environment at InitGlobals, read thereafter through
// GetGlobalRef. No config-file library is wired here — nothing in the
// retrieved corpus ships a config-parsing dependency that this single,
// flat struct would benefit from; os.Getenv is the whole of it.
package globals

import (
	"os"
	"sync"
	"time"
)

// FatLockTableShape mirrors spec.md §4.G's two-level array dimensions.
type FatLockTableShape struct {
	GlobalSize int
	IndexSize  int
}

// Globals is the single process-wide configuration/state block. Fields are
// read far more often than written, so writers must go through
// InitGlobals; there is no lock around reads.
type Globals struct {
	JacobinName string
	JavaHome    string
	Classpath   string
	BootClasspath string
	StartingJar string

	StrictJDK          bool
	JvmFrameStackShown bool

	// Trace gates, mirroring the teacher's globals.TraceClass/TraceCloadi.
	TraceClass  bool
	TraceCloadi bool
	TraceInst   bool

	// FuncThrowException lets lower packages (classloader, object) surface a
	// Java-visible exception without importing the interpreter/JIT
	// collaborator package, breaking what would otherwise be an import
	// cycle — mirrors the teacher's globals.GetGlobalRef().FuncThrowException
	// call pattern in classloader.go.
	FuncThrowException func(excName string, msg string)

	// FuncInvokeGFunction lets a resolver call back into the g-function
	// table (e.g. to run MethodType.fromMethodDescriptorString), mirroring
	// mhResolution.go.go's globals.GetGlobalRef().FuncInvokeGFunction.
	FuncInvokeGFunction func(fqn string, params []interface{}) interface{}

	// New knobs named in SPEC_FULL §3 that the teacher's globals struct
	// does not yet expose, but that spec.md's component designs require as
	// tunables rather than hardcoded magic numbers.
	VTCacheSize           int // spec.md §3 VirtualTable "cache slot" is single-entry; kept as 1 but named
	FatLockTable          FatLockTableShape
	SafepointPollInterval time.Duration

	// LoaderWg lets the bootstrap sequence wait for any background class
	// loader workers to drain, mirroring jacobin/globals.LoaderWg (used by
	// classloader.LoadFromLoaderChannel).
	LoaderWg sync.WaitGroup
}

var (
	mu  sync.Mutex
	ref *Globals
)

// InitGlobals (re)creates the process-wide Globals from the environment and
// installs it as the singleton other packages read via GetGlobalRef. name is
// the JVM instance name used in log lines and panics (matches the teacher's
// InitGlobals(jvmName string) signature).
func InitGlobals(name string) *Globals {
	mu.Lock()
	defer mu.Unlock()

	g := &Globals{
		JacobinName:   name,
		JavaHome:      os.Getenv("JAVA_HOME"),
		Classpath:     os.Getenv("CLASSPATH"),
		BootClasspath: os.Getenv("BOOTCLASSPATH"),
		VTCacheSize:   1,
		FatLockTable:  FatLockTableShape{GlobalSize: 128, IndexSize: 2048},
		SafepointPollInterval: 2 * time.Millisecond,
	}
	ref = g
	return ref
}

// GetGlobalRef returns the process-wide Globals, lazily creating an empty
// one if InitGlobals was never called (this matches how the teacher's
// tests reach for globals.GetGlobalRef() without always calling InitGlobals
// first).
func GetGlobalRef() *Globals {
	mu.Lock()
	defer mu.Unlock()
	if ref == nil {
		ref = &Globals{
			VTCacheSize:           1,
			FatLockTable:          FatLockTableShape{GlobalSize: 128, IndexSize: 2048},
			SafepointPollInterval: 2 * time.Millisecond,
		}
	}
	return ref
}
