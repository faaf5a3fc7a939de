/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package jvm is the interpreter/JIT call-in surface: allocate/
// allocate_array, monitor_enter/exit, check_cast, instance_of,
// array_store_check, the throw-family helpers, invoke_interface, and
// class_initialize. It is deliberately thin — the bytecode
// interpreter/JIT backend itself is out of scope — each function here is
// the one call a real interpreter would make into the core at the matching
// bytecode.
package jvm

import (
	"jacobin-core/corevm/src/classloader"
	"jacobin-core/corevm/src/excnames"
	"jacobin-core/corevm/src/gcplan"
	"jacobin-core/corevm/src/object"
)

// zeroValueForDescriptor gives each field-descriptor kind its JVM default
// value: reference types get nil, numeric types get their zero value.
func zeroValueForDescriptor(descriptor string) interface{} {
	if len(descriptor) == 0 {
		return nil
	}
	switch descriptor[0] {
	case 'L', '[':
		return nil
	case 'B', 'C', 'I', 'J', 'S', 'Z':
		return int64(0)
	case 'D', 'F':
		return float64(0)
	default:
		return nil
	}
}

// Allocate implements the `allocate(class) → object` call-in: the class
// must already be resolved (the loader's job), and this just builds the
// instance-field storage off classloader.Class.Fields.
func Allocate(class *classloader.Class, plan gcplan.Plan) (*object.Object, error) {
	if class == nil {
		return nil, &classError{Kind: excnames.NoClassDefFoundError, Msg: "allocate: nil class"}
	}

	o := object.NewObject(class.Name.String(), nil)
	for _, f := range class.Fields {
		o.Fields = append(o.Fields, object.Field{
			Ftype:  f.Descriptor,
			Fvalue: zeroValueForDescriptor(f.Descriptor),
		})
	}
	return o, nil
}

// AllocateArray implements `allocate_array(array_class,
// length) → array` call-in. Element storage is a plain Go slice of
// zero-valued Fields sized to length; a real plan would instead size a
// heap block via ClassArray.InstanceSize and install the VT. Unlike
// Allocate it takes no plan: nothing here routes through
// gcplan.Plan.Allocate, since no component uses it to back Go-native slices.
func AllocateArray(arrayClass *classloader.ClassArray, length int) (*object.Object, error) {
	if arrayClass == nil {
		return nil, &classError{Kind: excnames.NoClassDefFoundError, Msg: "allocate_array: nil array class"}
	}
	if length < 0 {
		return nil, &classError{Kind: excnames.NegativeArraySizeException, Msg: "allocate_array: negative length"}
	}

	o := object.NewObject(arrayClass.Name.String(), nil)
	componentDescriptor := ""
	if arrayClass.Component != nil {
		componentDescriptor = arrayClass.Component.Name.String()
	}
	o.Fields = make([]object.Field, length)
	for i := range o.Fields {
		o.Fields[i] = object.Field{Ftype: componentDescriptor, Fvalue: zeroValueForDescriptor(componentDescriptor)}
	}
	return o, nil
}

// classError is a local copy of classloader.ClassError's shape: this
// package can't import the unexported classloader.classError constructors,
// and doesn't need classloader's full ClassError machinery, just the same
// Kind+Msg shape for its own call-in failures.
type classError struct {
	Kind string
	Msg  string
}

func (e *classError) Error() string { return e.Kind + ": " + e.Msg }
