package clip

import "unsafe"

// copyAt returns a copy of the n bytes at addr, an address handed back by a
// system call such as GlobalLock. The memory only has to stay valid for the
// duration of the call.
func copyAt(addr uintptr, n int) []byte {
	out := make([]byte, n)
	if n == 0 {
		return out
	}
	// addr is not Go memory, so it is reinterpreted rather than converted.
	p := *(*unsafe.Pointer)(unsafe.Pointer(&addr))
	copy(out, unsafe.Slice((*byte)(p), n))
	return out
}
