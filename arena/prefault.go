package arena

import (
	"fmt"
	"runtime/debug"
)

const pageSize = 4096

// manualPreFault touches one byte per page with panic-on-fault enabled so a
// SIGBUS becomes a recoverable panic.
func manualPreFault(data []byte) (retErr error) {
	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)

	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				retErr = fmt.Errorf("memory access fault during pre-fault: %w", err)
			} else {
				retErr = fmt.Errorf("memory access fault during pre-fault: %v", r)
			}
		}
	}()

	var sink byte
	for i := 0; i < len(data); i += pageSize {
		sink ^= data[i]
	}
	sink ^= data[len(data)-1]
	_ = sink
	return nil
}
