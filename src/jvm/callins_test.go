/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jacobin-core/corevm/src/classloader"
	"jacobin-core/corevm/src/excnames"
	"jacobin-core/corevm/src/object"
	"jacobin-core/corevm/src/thread"
)

func loadAnimalAndDog(t *testing.T) (*classloader.Loader, *classloader.Class, *classloader.Class) {
	fx := newRawFixture()
	fx.add(classloader.RawClass{Name: "Animal", SuperName: "java/lang/Object"})
	fx.add(classloader.RawClass{Name: "Dog", SuperName: "Animal"})
	l := fx.loader()

	animal, err := l.LoadClass("Animal")
	require.NoError(t, err)
	dog, err := l.LoadClass("Dog")
	require.NoError(t, err)
	return l, animal, dog
}

func TestInstanceOfAndCheckCast(t *testing.T) {
	l, animal, dog := loadAnimalAndDog(t)

	dogObj := object.NewObject("Dog", nil)
	require.True(t, InstanceOf(dogObj, dog))
	require.True(t, InstanceOf(dogObj, animal), "a Dog instance is also an Animal")
	require.NoError(t, CheckCast(dogObj, animal))

	animalObj := object.NewObject("Animal", nil)
	require.False(t, InstanceOf(animalObj, dog), "an Animal instance is not necessarily a Dog")
	err := CheckCast(animalObj, dog)
	require.Error(t, err)

	require.NoError(t, CheckCast(nil, dog), "null always passes checkcast")
	require.False(t, InstanceOf(nil, dog), "null is never instanceof anything")

	_ = l
}

func TestArrayStoreCheck(t *testing.T) {
	_, animal, dog := loadAnimalAndDog(t)
	arr := &classloader.ClassArray{Component: &animal.CommonClass}

	dogObj := object.NewObject("Dog", nil)
	require.NoError(t, ArrayStoreCheck(arr, dogObj))

	animalObj := object.NewObject("Animal", nil)
	arrOfDogs := &classloader.ClassArray{Component: &dog.CommonClass}
	err := ArrayStoreCheck(arrOfDogs, animalObj)
	require.Error(t, err)

	require.NoError(t, ArrayStoreCheck(arr, nil), "storing null always succeeds")
}

func TestMonitorEnterExit(t *testing.T) {
	obj := object.NewObject("Animal", nil)
	owner := thread.NewJavaThread(1, 0, 0)
	other := thread.NewJavaThread(2, 0, 0)

	MonitorEnter(owner, obj)
	err := MonitorExit(other, obj)
	require.Error(t, err, "a non-owner's monitor_exit must raise IllegalMonitorStateException")

	require.NoError(t, MonitorExit(owner, obj))
}

func TestThrowFamilyInstallsPendingException(t *testing.T) {
	jt := thread.NewJavaThread(1, 0, 0)
	require.False(t, jt.HasPending())

	NullPointerException(jt)
	require.True(t, jt.HasPending())
	err, ok := jt.GetPending().(error)
	require.True(t, ok)
	require.ErrorContains(t, err, excnames.NullPointerException)
}

func TestInvokeInterfaceCachesAfterFirstLookup(t *testing.T) {
	fx := newRawFixture()
	fx.add(classloader.RawClass{
		Name:      "Barker",
		SuperName: "java/lang/Object",
		Interfaces: []string{"Bark"},
		Methods: []classloader.RawMethod{
			{Name: "bark", Descriptor: "()V"},
		},
	})
	fx.add(classloader.RawClass{
		Name:   "Bark",
		Access: classloader.AccessFlags{Interface: true},
		Methods: []classloader.RawMethod{
			{Name: "bark", Descriptor: "()V", IsAbstract: true},
		},
	})
	l := fx.loader()

	barker, err := l.LoadClass("Barker")
	require.NoError(t, err)
	bark, err := l.LoadClass("Bark")
	require.NoError(t, err)

	ifaceMethod := bark.VMethods["bark()V"]
	require.NotNil(t, ifaceMethod)

	obj := object.NewObject("Barker", nil)
	var cacheSlot *classloader.Method
	m, err := InvokeInterface(l, obj, ifaceMethod, &cacheSlot)
	require.NoError(t, err)
	require.Equal(t, "bark", m.Name)
	require.Same(t, cacheSlot, m)

	m2, err := InvokeInterface(l, obj, ifaceMethod, &cacheSlot)
	require.NoError(t, err)
	require.Same(t, m, m2, "second call must hit the inline cache")
}
