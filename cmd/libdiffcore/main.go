// Command libdiffcore exports the diff engine as a C shared library:
//
//	go build -buildmode=c-shared -o libdiffcore.so ./cmd/libdiffcore
//
// The exported names and signatures are the compatibility surface;
// returned pointers are stable only until the next finalize,
// batch_resolve_symbols, commit, clear_engine or destroy_engine on
// the same handle.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/roach88/diffcore/internal/ffi"
)

func main() {}

// bytePtr returns a C-visible pointer to the first byte of b.
func bytePtr(b []byte) *C.uint8_t {
	if len(b) == 0 {
		return nil
	}
	return (*C.uint8_t)(unsafe.Pointer(&b[0]))
}

//export create_engine
func create_engine(maxMemory, maxInput C.uint32_t) C.uint64_t {
	return C.uint64_t(ffi.CreateEngine(uint32(maxMemory), uint32(maxInput)))
}

//export create_engine_with_config
func create_engine_with_config(configPtr *C.uint8_t, configLen C.uint32_t) C.uint64_t {
	var frame []byte
	if configPtr != nil && configLen > 0 {
		frame = unsafe.Slice((*byte)(unsafe.Pointer(configPtr)), int(configLen))
	}
	return C.uint64_t(ffi.CreateEngineFromFrame(frame))
}

//export destroy_engine
func destroy_engine(handle C.uint64_t) C.uint8_t {
	return C.uint8_t(ffi.DestroyEngine(ffi.Handle(handle)))
}

//export clear_engine
func clear_engine(handle C.uint64_t) C.uint8_t {
	return C.uint8_t(ffi.ClearEngine(ffi.Handle(handle)))
}

//export get_left_input_ptr
func get_left_input_ptr(handle C.uint64_t) *C.uint8_t {
	eng, ok := ffi.Lookup(ffi.Handle(handle))
	if !ok {
		return nil
	}
	return bytePtr(eng.LeftInput())
}

//export get_right_input_ptr
func get_right_input_ptr(handle C.uint64_t) *C.uint8_t {
	eng, ok := ffi.Lookup(ffi.Handle(handle))
	if !ok {
		return nil
	}
	return bytePtr(eng.RightInput())
}

//export commit_left
func commit_left(handle C.uint64_t, n C.uint32_t) C.int32_t {
	return C.int32_t(ffi.CommitLeft(ffi.Handle(handle), uint32(n)))
}

//export commit_right
func commit_right(handle C.uint64_t, n C.uint32_t) C.int32_t {
	return C.int32_t(ffi.CommitRight(ffi.Handle(handle), uint32(n)))
}

//export finalize
func finalize(handle C.uint64_t) *C.uint8_t {
	eng, ok := ffi.Lookup(ffi.Handle(handle))
	if !ok {
		return nil
	}
	return bytePtr(eng.Finalize())
}

//export get_result_len
func get_result_len(handle C.uint64_t) C.uint32_t {
	eng, ok := ffi.Lookup(ffi.Handle(handle))
	if !ok {
		return 0
	}
	return C.uint32_t(eng.ResultLen())
}

//export batch_resolve_symbols
func batch_resolve_symbols(handle C.uint64_t, outLen *C.uint32_t) *C.uint8_t {
	eng, ok := ffi.Lookup(ffi.Handle(handle))
	if !ok {
		return nil
	}
	frame := eng.BatchResolveSymbols()
	if outLen != nil {
		*outLen = C.uint32_t(len(frame))
	}
	return bytePtr(frame)
}

//export get_last_error
func get_last_error(handle C.uint64_t) *C.uint8_t {
	eng, ok := ffi.Lookup(ffi.Handle(handle))
	if !ok {
		return nil
	}
	msg := eng.LastError()
	if msg == "" {
		return nil
	}
	// C-owned, null-terminated copy; freed by the next get_last_error
	// call on any handle via the one-slot cache below.
	cacheErrString(handle, msg)
	return (*C.uint8_t)(unsafe.Pointer(errCache.ptr))
}

//export get_last_error_len
func get_last_error_len(handle C.uint64_t) C.uint32_t {
	eng, ok := ffi.Lookup(ffi.Handle(handle))
	if !ok {
		return 0
	}
	return C.uint32_t(len(eng.LastError()))
}

// errCache holds the single outstanding C copy of a last-error
// message. The boundary contract already invalidates returned
// pointers on the next call, so one slot suffices.
var errCache struct {
	handle C.uint64_t
	ptr    *C.char
}

func cacheErrString(handle C.uint64_t, msg string) {
	if errCache.ptr != nil {
		C.free(unsafe.Pointer(errCache.ptr))
	}
	errCache.handle = handle
	errCache.ptr = C.CString(msg)
}

//export _internal_alloc
func _internal_alloc(size C.uint32_t) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	return C.malloc(C.size_t(size))
}

//export _internal_dealloc
func _internal_dealloc(ptr unsafe.Pointer, size C.uint32_t) {
	if ptr != nil {
		C.free(ptr)
	}
}
