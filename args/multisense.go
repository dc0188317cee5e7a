package args

// MultiSense is the transponding detail of a multi sense report.
//
// Wire layout: M_HIGH carries the report kind (0x60), the present flag (0x10) and the
// four high board address bits; ZAS carries the four low board address bits and the zone.
type MultiSense struct {
	mHigh byte
	zas   byte
}

// NewMultiSense returns a multi sense detail. kind is masked to 2 bits and zone to 4 bits.
func NewMultiSense(kind byte, present bool, board byte, zone byte) MultiSense {
	m := MultiSense{
		mHigh: (kind&0x03)<<5 | board>>4,
		zas:   (board&0x0F)<<4 | zone&0x0F,
	}
	if present {
		m.mHigh |= 0x10
	}

	return m
}

// ParseMultiSense decodes M_HIGH and ZAS.
func ParseMultiSense(mHigh, zas byte) MultiSense {
	return MultiSense{mHigh: mHigh & 0x7F, zas: zas & 0x7F}
}

// Kind returns the report kind.
func (m MultiSense) Kind() byte { return (m.mHigh >> 5) & 0x03 }

// Present reports whether the transponder entered (true) or left (false) the zone.
func (m MultiSense) Present() bool { return m.mHigh&0x10 != 0 }

// Board returns the 8 bit detector board address.
func (m MultiSense) Board() byte { return (m.mHigh&0x0F)<<4 | m.zas>>4 }

// Zone returns the detection zone of the board.
func (m MultiSense) Zone() byte { return m.zas & 0x0F }

// Wire returns M_HIGH and ZAS.
func (m MultiSense) Wire() (byte, byte) { return m.mHigh, m.zas }
