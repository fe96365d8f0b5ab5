package format

// Align8 returns n aligned up to the next 8-byte boundary.
// Used for block sizes and payload offsets.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// IsAligned reports whether n sits on an Alignment boundary.
func IsAligned(n int) bool {
	return n&AlignmentMask == 0
}

// AdjustedSize converts a requested payload size into the block size that
// serves it: payload plus header and footer, rounded up to the alignment.
// The result is never below MinBlockSize.
//
// Example:
//
//	AdjustedSize(1)   = 16
//	AdjustedSize(8)   = 16
//	AdjustedSize(9)   = 24
//	AdjustedSize(100) = 112
func AdjustedSize(payload int) int {
	return max(Align8(payload+BlockOverhead), MinBlockSize)
}
