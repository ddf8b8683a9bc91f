package mem

import "runtime"

// ZeroBytes overwrites b with zeros.
//
// runtime.KeepAlive keeps the stores from being removed as dead writes. Copies
// the runtime made before this call (slice growth, GC moves) are not reached.
func ZeroBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	clear(b)
	runtime.KeepAlive(b)
}
