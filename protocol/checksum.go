package protocol

func fold(b []byte) byte {
	var x byte
	for _, v := range b {
		x ^= v
	}

	return x
}

// Checksum returns the checksum byte for a frame whose bytes before the checksum are prefix.
func Checksum(prefix []byte) byte {
	return 0xFF ^ fold(prefix)
}

// Validate reports whether the XOR of all bytes of frame, checksum included, is 0xFF.
func Validate(frame []byte) bool {
	return len(frame) > 0 && fold(frame) == 0xFF
}
