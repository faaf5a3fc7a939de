/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package excnames lists the internal names of the exception/error kinds
// the core raises or surfaces, per spec.md §7. These are plain string
// constants (the fully-qualified internal class name), not Go error types
// themselves — packages that raise one of these wrap it in their own error
// struct alongside the kind, so that a caller threading the error back to a
// Java handler can recover both the Go diagnostic and the Java class name.
package excnames

const (
	// Loader / resolution
	ClassNotFoundException   = "java/lang/ClassNotFoundException"
	NoClassDefFoundError     = "java/lang/NoClassDefFoundError"
	ClassFormatError         = "java/lang/ClassFormatError"
	UnsupportedClassVersion  = "java/lang/UnsupportedClassVersionError"
	ClassCircularityError    = "java/lang/ClassCircularityError"
	ClassNotLoadedException = "java/lang/ClassNotLoadedException"

	// Resolve / link
	IncompatibleClassChangeError = "java/lang/IncompatibleClassChangeError"
	NoSuchMethodError            = "java/lang/NoSuchMethodError"
	NoSuchFieldError             = "java/lang/NoSuchFieldError"
	AbstractMethodError          = "java/lang/AbstractMethodError"
	IllegalAccessError           = "java/lang/IllegalAccessError"
	VerifyError                  = "java/lang/VerifyError"

	// Initialization
	ExceptionInInitializerError = "java/lang/ExceptionInInitializerError"
	NoClassInitializerError     = "java/lang/NoClassDefFoundError" // initializer-failure flavor, same JVM class

	// Runtime checks
	NullPointerException         = "java/lang/NullPointerException"
	ArrayIndexOutOfBoundsException = "java/lang/ArrayIndexOutOfBoundsException"
	IndexOutOfBoundsException     = "java/lang/IndexOutOfBoundsException"
	StringIndexOutOfBoundsException = "java/lang/StringIndexOutOfBoundsException"
	ArrayStoreException           = "java/lang/ArrayStoreException"
	ClassCastException            = "java/lang/ClassCastException"
	NegativeArraySizeException    = "java/lang/NegativeArraySizeException"
	ArithmeticException           = "java/lang/ArithmeticException"
	IllegalArgumentException      = "java/lang/IllegalArgumentException"
	PatternSyntaxException        = "java/util/regex/PatternSyntaxException"
	IOException                   = "java/io/IOException"
	UnsupportedOperationException = "java/lang/UnsupportedOperationException"

	// Monitor / wait
	IllegalMonitorStateException = "java/lang/IllegalMonitorStateException"
	InterruptedException         = "java/lang/InterruptedException"

	// Allocator / stack
	OutOfMemoryError   = "java/lang/OutOfMemoryError"
	StackOverflowError = "java/lang/StackOverflowError"

	// Invariant violation escape
	InternalError = "java/lang/InternalError"
	UnknownError  = "java/lang/UnknownError"
)
