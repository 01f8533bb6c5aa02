// Package guest implements the guest-side half of the ABI (spec.md §4.C):
// the exported allocator a host needs to hand a plugin a buffer, and the
// message read/write helpers a generated or hand-written
// "_plugy_guest_<method>" stub uses to talk to it.
//
// Everything in this package except Config (a plain map helper with no
// memory-unsafe code) is gated to GOOS=wasip1: it reads and writes the
// guest's own linear memory directly through unsafe.Pointer arithmetic,
// which is only meaningful from inside the guest module itself.
package guest
