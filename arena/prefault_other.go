//go:build !linux

package arena

// PreFaultPages faults in every page of a mapped region, converting a fault
// on an inaccessible page into an error.
func PreFaultPages(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return manualPreFault(data)
}
