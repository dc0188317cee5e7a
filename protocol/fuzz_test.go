package protocol

import (
	"testing"
)

// FuzzParse feeds arbitrary bytes to Parse.
//
// Parse must never panic, and a decoded message must encode to a frame that
// decodes to the same message.
func FuzzParse(f *testing.F) {
	f.Add([]byte{0x83, 0x7C})
	f.Add([]byte{0xA0, 0x0A, 0x7B, 0xFF ^ (0xA0 ^ 0x0A ^ 0x7B)})
	f.Add(withChecksum(OpSlRdData, 0x0E, 1, 0x33, 3, 0, 0, 0, 0, 0, 0, 0, 0))
	f.Add(withChecksum(OpRep, 0x0C, 0x41, 1, 2, 3, 4, 5, 6, 7, 0x1F))
	f.Add(withChecksum(OpUhliFun, 0x20, 0x01, 0x07, 0x70))
	f.Add([]byte{0xE7, 0x0E, 0x01})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		m, err := Parse(data)
		if err != nil {
			return
		}

		again, err := Parse(Encode(m))
		if err != nil {
			t.Fatalf("re-parse of %s failed: %v", m, err)
		}
		if again.String() != m.String() {
			t.Fatalf("round trip mismatch: %s != %s", again, m)
		}
	})
}
