//go:build wasip1

package guest

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/plugyrt/plugy/abi"
)

// DefaultMaxAllocBytes bounds the total memory a guest module will hand
// out through allocate before it panics, preventing a runaway host (or a
// guest bug that never deallocates) from growing linear memory without
// bound.
const DefaultMaxAllocBytes = 100 * 1024 * 1024

// MemoryOption configures the guest allocator.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	maxAllocBytes int
}

func defaultMemoryConfig() memoryConfig {
	return memoryConfig{maxAllocBytes: DefaultMaxAllocBytes}
}

// WithMaxAllocBytes overrides the default allocation ceiling. Values <= 0
// are ignored.
func WithMaxAllocBytes(n int) MemoryOption {
	return func(c *memoryConfig) {
		if n > 0 {
			c.maxAllocBytes = n
		}
	}
}

// Configure applies options to the guest's global allocator. Call before
// any allocation happens; safe to call multiple times, not safe to call
// concurrently with in-flight allocations.
func Configure(opts ...MemoryOption) {
	allocator.Lock()
	defer allocator.Unlock()
	for _, opt := range opts {
		opt(&allocator.config)
	}
}

// allocatorState tracks every live allocation so the Go garbage collector
// never reclaims a buffer the host still holds a pointer into, and so
// deallocate can recover the true size of a region regardless of what the
// caller passes.
type allocatorState struct {
	live   map[uint32][]byte
	total  int
	config memoryConfig
	sync.Mutex
}

var allocator = &allocatorState{
	live:   make(map[uint32][]byte),
	config: defaultMemoryConfig(),
}

// allocate reserves size uninitialized bytes in linear memory and returns
// their offset. Exported as the guest's "allocate" entry point, per
// spec.md §4.C.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	allocator.Lock()
	defer allocator.Unlock()

	if allocator.total+int(size) > allocator.config.maxAllocBytes {
		panic(fmt.Sprintf("guest: allocation limit exceeded (requested %d, live %d, limit %d)",
			size, allocator.total, allocator.config.maxAllocBytes))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))

	allocator.live[ptr] = buf // pin: keep the GC from collecting this region
	allocator.total += int(size)
	return ptr
}

// deallocate unpacks (ptr, len) from packed and releases that region. The
// freed size comes from the tracked allocation, not from the packed
// length, so a mismatched length (spec.md §4.C: "undefined" if mismatched)
// cannot corrupt the live total. Untracked pointers are ignored, making
// deallocate idempotent.
//
//go:wasmexport deallocate
func deallocate(packed uint64) {
	ptr, _ := abi.UnpackLenient(packed)

	allocator.Lock()
	defer allocator.Unlock()

	buf, ok := allocator.live[ptr]
	if !ok {
		return
	}
	delete(allocator.live, ptr)
	allocator.total -= len(buf)
	if allocator.total < 0 {
		allocator.total = 0
	}
}

// FreeAll drops every tracked allocation, typically from a panic-recovery
// path that is about to unwind the whole call.
func FreeAll() {
	allocator.Lock()
	defer allocator.Unlock()
	clear(allocator.live)
	allocator.total = 0
}

// Stats reports the number of live allocations and their total size, for
// diagnostics.
func Stats() (count, totalBytes int) {
	allocator.Lock()
	defer allocator.Unlock()
	return len(allocator.live), allocator.total
}

// Put copies data into a freshly allocated region and returns its packed
// descriptor. Used to hand a buffer to the host, or to the host's
// "_plugy_context_*" import.
func Put(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data))
	ptr := allocate(size)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), size)
	copy(dst, data)
	return abi.Pack(ptr, size)
}

// Take reads the region described by a packed descriptor and returns a
// copy of its bytes. Used to receive a buffer the host allocated for this
// guest.
func Take(packed uint64) []byte {
	ptr, length := abi.Unpack(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
	out := make([]byte, length)
	copy(out, src)
	return out
}

// Free deallocates the region described by a packed descriptor. No-op for
// a zero descriptor.
func Free(packed uint64) {
	ptr, length := abi.Unpack(packed)
	if ptr != 0 && length > 0 {
		deallocate(packed)
	}
}
