/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package types holds the small, dependency-free constants and aliases that
// every other package in the core needs: JVM type-descriptor tags, the
// handful of sentinel indices used by the interner, and the <clinit>
// progress markers used by the class state machine.
package types

// JavaByte is the core's representation of a JVM byte. It is its own type
// (rather than a bare byte) because Java bytes are signed 8-bit values used
// inside byte[] arrays that themselves back Java Strings, and callers must
// not conflate it with a raw Go byte slice used for class-file bytes.
type JavaByte int8

// Single-character type descriptor tags, per JVMS 4.3.2.
const (
	Bool      = "Z"
	Byte      = "B"
	Char      = "C"
	Double    = "D"
	Float     = "F"
	Int       = "I"
	Long      = "J"
	Short     = "S"
	RefArray  = "[L" // prefix of an array-of-reference descriptor
	Array     = "["  // prefix of any array descriptor
	ByteArray = "[B"
	IntArray  = "[I"
)

// JavaBoolTrue / JavaBoolFalse are the canonical int forms the operand
// stack and field table use for the JVM's single-byte boolean encoding.
const (
	JavaBoolFalse int64 = 0
	JavaBoolTrue  int64 = 1
)

// StringClassName is the internal (slash-separated) name of java.lang.String.
const StringClassName = "java/lang/String"

// Sentinel string-pool indices, shared across the interner and the
// classloader so that "no index" and "the index of java/lang/Object" can be
// compared without a lookup.
const (
	InvalidStringIndex     uint32 = 0xFFFFFFFF
	ObjectPoolStringIndex  uint32 = 0
	StringPoolStringIndex  uint32 = 1
)

// ClInit* values track whether a class's <clinit> has run, mirroring the
// Class.ClInit byte in spec.md's class-entity data model.
const (
	NoClinit byte = iota
	ClInitNotRun
	ClInitInProgress
	ClInitRun
)
