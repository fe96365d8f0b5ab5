package format

import "testing"

func TestEncodingLittleEndian(t *testing.T) {
	buf := make([]byte, 16)
	PutU32(buf, 4, 0x11223344)
	if buf[4] != 0x44 || buf[7] != 0x11 {
		t.Fatalf("PutU32 not little-endian: % x", buf[4:8])
	}
	if got := ReadU32(buf, 4); got != 0x11223344 {
		t.Fatalf("ReadU32=%#x", got)
	}
	PutU64(buf, 8, 0x0102030405060708)
	if got := ReadU64(buf, 8); got != 0x0102030405060708 {
		t.Fatalf("ReadU64=%#x", got)
	}
}

func TestEncodingOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on short buffer")
		}
	}()
	ReadU32(make([]byte, 3), 0)
}
