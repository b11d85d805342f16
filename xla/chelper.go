package xla

// #cgo CFLAGS: -I${SRCDIR}
// #cgo LDFLAGS: -lxla_rs
/*
#include <stdlib.h>
#include <string.h>
*/
import "C"
import (
	"reflect"
	"unsafe"

	"fortio.org/safecast"
	"github.com/pkg/errors"
)

// File implements several CGO helper utilities.

// cFree calls C.free() on the unsafe.Pointer version of data.
func cFree[T any](data *T) {
	C.free(unsafe.Pointer(data))
}

// cSizeOf returns the size of the given type in bytes. Notice some structures may be padded, and this will
// include that space.
func cSizeOf[T any]() C.size_t {
	var ptr *T
	return C.size_t(reflect.TypeOf(ptr).Elem().Size())
}

// cMallocArray allocates space to hold n copies of T in the C heap and initializes it to zero.
// It must be manually freed with cFree() by the user.
func cMallocArray[T any](n int) (ptr *T) {
	if n == 0 {
		n = 1 // calloc may return NULL for 0 elements.
	}
	size := cSizeOf[T]()
	cPtr := (*T)(C.calloc(C.size_t(n), size))
	return cPtr
}

// cMallocArrayFromSlice allocates space to hold len(values) copies of T in the C heap and copy over the slice.
// It must be manually freed with cFree() by the user.
func cMallocArrayFromSlice[T any](values []T) (ptr *T) {
	ptr = cMallocArray[T](len(values))
	dst := unsafe.Slice(ptr, len(values))
	copy(dst, values)
	return ptr
}

// cDataToSlice converts a C pointer to C allocated array of type T with count elements and return an unsafe
// slice to the data.
func cDataToSlice[T any](data unsafe.Pointer, count int) (result []T) {
	return unsafe.Slice((*T)(data), count)
}

// cNullTerminated returns the pointers of a C array terminated by a NULL pointer.
// The returned slice points to the C memory, it is not a copy.
func cNullTerminated(data unsafe.Pointer) []unsafe.Pointer {
	if data == nil {
		return nil
	}
	n := 0
	for *(*unsafe.Pointer)(unsafe.Add(data, uintptr(n)*unsafe.Sizeof(data))) != nil {
		n++
	}
	return cDataToSlice[unsafe.Pointer](data, n)
}

// cStrFree converts the allocated C string (char *) to a Go `string` and
// frees the C string immediately.
func cStrFree(cstr *C.char) (str string) {
	if cstr == nil {
		return ""
	}
	str = C.GoString(cstr)
	C.free(unsafe.Pointer(cstr))
	return
}

// cInt64Array allocates a C array with the given values. It returns nil for an empty list.
// It must be freed with cFree (which accepts nil).
func cInt64Array[T ~int | ~int64](values []T) (*C.int64_t, C.size_t) {
	if len(values) == 0 {
		return nil, 0
	}
	cValues := make([]C.int64_t, len(values))
	for ii, v := range values {
		cValues[ii] = C.int64_t(v)
	}
	return cMallocArrayFromSlice(cValues), C.size_t(len(values))
}

// cCount converts a Go length to a C int, failing if it doesn't fit.
func cCount(n int) (C.int, error) {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		return 0, errors.Wrapf(err, "count %d doesn't fit a C int", n)
	}
	return C.int(v), nil
}

// goCount converts a count returned by the native library to a Go int, failing on negative values or overflow.
func goCount[T ~int32 | ~int64](n T) (int, error) {
	v, err := safecast.Conv[int](int64(n))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid count %d returned by XLA", int64(n))
	}
	if v < 0 {
		return 0, errors.Errorf("invalid negative count %d returned by XLA", v)
	}
	return v, nil
}
