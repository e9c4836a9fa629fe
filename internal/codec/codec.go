// Package codec implements the DE1's fixed-point binary encodings.
//
// All multi-byte fields on the wire are big-endian except the 32-bit MMR
// write payload, which is little-endian. Encoders clamp instead of wrapping.
package codec

import "encoding/binary"

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EncodeU8P4 encodes an 8-bit unsigned value with 4 fractional bits.
func EncodeU8P4(v float64) uint8 {
	return uint8(clamp(v*16.0, 0, 255))
}

// DecodeU8P4 decodes an 8-bit unsigned value with 4 fractional bits.
func DecodeU8P4(b uint8) float64 {
	return float64(b) / 16.0
}

// EncodeU16P8 encodes a 16-bit unsigned value with 8 fractional bits.
func EncodeU16P8(v float64) uint16 {
	return uint16(clamp(v*256.0, 0, 65535))
}

// DecodeU16P8 decodes a 16-bit unsigned value with 8 fractional bits.
func DecodeU16P8(b uint16) float64 {
	return float64(b) / 256.0
}

// EncodeU16P12 encodes a 16-bit unsigned value with 12 fractional bits.
func EncodeU16P12(v float64) uint16 {
	return uint16(clamp(v*4096.0, 0, 65535))
}

// EncodeU24P16 encodes a 24-bit unsigned value with 16 fractional bits into
// out[0:3], big-endian. out must be at least 3 bytes.
func EncodeU24P16(v float64, out []byte) {
	encoded := uint32(clamp(v*65536.0, 0, 16777215))
	out[0] = byte(encoded >> 16)
	out[1] = byte(encoded >> 8)
	out[2] = byte(encoded)
}

// DecodeU8P1 decodes an 8-bit unsigned value with 1 fractional bit.
func DecodeU8P1(b uint8) float64 {
	return float64(b) / 2.0
}

// DecodeF8_1_7 decodes the DE1's F8_1_7 duration format: high bit set means
// the low 7 bits are whole seconds, otherwise the byte is tenths.
func DecodeF8_1_7(b uint8) float64 {
	if b&0x80 != 0 {
		return float64(b & 0x7F)
	}
	return float64(b) / 10.0
}

// DecodeU10P0 reads a 16-bit big-endian field and masks to the low 10 bits.
func DecodeU10P0(data []byte) uint16 {
	return binary.BigEndian.Uint16(data) & 0x3FF
}

// EncodeShortBE writes a 16-bit big-endian value into out[0:2].
func EncodeShortBE(v uint16, out []byte) {
	binary.BigEndian.PutUint16(out, v)
}

// DecodeShortBE reads a 16-bit big-endian value.
func DecodeShortBE(data []byte) uint16 {
	return binary.BigEndian.Uint16(data)
}

// EncodeUint32BE writes a 32-bit big-endian value into out[0:4].
func EncodeUint32BE(v uint32, out []byte) {
	binary.BigEndian.PutUint32(out, v)
}

// DecodeAddress reads the 24-bit big-endian MMR address from bytes [1..4)
// of a request prefix. data must hold at least 4 bytes.
func DecodeAddress(data []byte) uint32 {
	return uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
}

// DecodeUint32LE reads the little-endian payload of a write-to-MMR request
// from bytes [4..8).
func DecodeUint32LE(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data[4:8])
}
