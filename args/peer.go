package args

// PeerDataSize is the number of data bytes in a peer to peer transfer.
const PeerDataSize = 8

// PeerData is the payload of a peer to peer transfer: eight data bytes and a
// 6 bit PXC code.
//
// On the wire the data bytes are split into two groups of four. Each group is
// preceded by a PXCT byte whose bits 0-3 carry bit 7 of the group's data bytes and
// whose bits 4-6 carry three bits of the PXC code (PXCT1 the low, PXCT2 the high bits).
type PeerData struct {
	pxc  byte
	data [PeerDataSize]byte
}

// NewPeerData returns a peer transfer payload; pxc is masked to 6 bits.
func NewPeerData(pxc byte, data [PeerDataSize]byte) PeerData {
	return PeerData{pxc: pxc & 0x3F, data: data}
}

// ParsePeerData decodes PXCT1, D1-D4, PXCT2 and D5-D8.
func ParsePeerData(pxct1 byte, d1to4 [4]byte, pxct2 byte, d5to8 [4]byte) PeerData {
	p := PeerData{pxc: (pxct1>>4)&0x07 | ((pxct2>>4)&0x07)<<3}
	for i := range 4 {
		p.data[i] = d1to4[i]&0x7F | ((pxct1>>i)&0x01)<<7
		p.data[i+4] = d5to8[i]&0x7F | ((pxct2>>i)&0x01)<<7
	}

	return p
}

// PXC returns the 6 bit PXC code.
func (p PeerData) PXC() byte { return p.pxc }

// Data returns the eight data bytes.
func (p PeerData) Data() [PeerDataSize]byte { return p.data }

// Wire returns PXCT1, D1-D4, PXCT2 and D5-D8.
func (p PeerData) Wire() (pxct1 byte, d1to4 [4]byte, pxct2 byte, d5to8 [4]byte) {
	pxct1 = (p.pxc & 0x07) << 4
	pxct2 = ((p.pxc >> 3) & 0x07) << 4
	for i := range 4 {
		d1to4[i] = p.data[i] & 0x7F
		d5to8[i] = p.data[i+4] & 0x7F
		pxct1 |= (p.data[i] >> 7) << i
		pxct2 |= (p.data[i+4] >> 7) << i
	}

	return pxct1, d1to4, pxct2, d5to8
}
