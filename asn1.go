// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package cardos

// buffer is a bounded cursor over a fixed-size byte slice. CardOS
// allots fixed room for the structures built here (FCP bodies, access
// rule lists), so every write is bounds-checked and overflow surfaces
// as ErrBufferTooSmall instead of growing the slice.
type buffer struct {
	data []byte
	used int
}

func newBuffer(size int) *buffer {
	return &buffer{data: make([]byte, size)}
}

func (b *buffer) bytes() []byte {
	return b.data[:b.used]
}

func (b *buffer) remaining() int {
	return len(b.data) - b.used
}

// putTag appends tag, a one-byte length and content. The one-byte
// length dialect caps the content at 255 bytes.
func (b *buffer) putTag(tag byte, content []byte) error {
	if len(content) > 0xff || b.remaining() < len(content)+2 {
		return ErrBufferTooSmall
	}

	b.data[b.used] = tag
	b.data[b.used+1] = byte(len(content))
	copy(b.data[b.used+2:], content)
	b.used += len(content) + 2

	return nil
}

// putTag0 appends tag with empty content.
func (b *buffer) putTag0(tag byte) error {
	return b.putTag(tag, nil)
}

// putTag1 appends tag with a single content byte.
func (b *buffer) putTag1(tag, value byte) error {
	return b.putTag(tag, []byte{value})
}

// putBERTLV appends tag and data using BER-TLV length encoding: short
// form below 0x80, 0x81 below 0xff and 0x82 up to 0xffff.
func (b *buffer) putBERTLV(tag byte, data []byte) error {
	if len(data) > 0xffff {
		return ErrBufferTooSmall
	}

	var hdr []byte
	switch {
	case len(data) < 0x80:
		hdr = []byte{tag, byte(len(data))}
	case len(data) < 0xff:
		hdr = []byte{tag, 0x81, byte(len(data))}
	default:
		hdr = []byte{tag, 0x82, byte(len(data) >> 8), byte(len(data))}
	}

	if b.remaining() < len(hdr)+len(data) {
		return ErrBufferTooSmall
	}

	n := copy(b.data[b.used:], hdr)
	copy(b.data[b.used+n:], data)
	b.used += len(hdr) + len(data)

	return nil
}

// findTag scans a flat sequence of one-byte-length TLV records for tag
// and returns its content, or nil if the tag is absent or the sequence
// is truncated.
func findTag(b []byte, tag byte) []byte {
	for len(b) >= 2 {
		t := b[0]
		n := int(b[1])
		b = b[2:]

		if len(b) < n {
			return nil
		}
		if t == tag {
			return b[:n]
		}

		b = b[n:]
	}

	return nil
}
