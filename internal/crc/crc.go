// Package crc implements the three checksum widths the HDT container
// format uses: CRC-8/CCITT over short section headers, CRC-16/ANSI over
// control-information blocks, and CRC-32C (Castagnoli) over section
// payloads (spec.md §4, §6).
package crc

import "hash/crc32"

// CRC8 is a CRC-8/CCITT accumulator (polynomial 0x07).
type CRC8 uint8

var table8 = func() [256]byte {
	const poly = 0x07
	var t [256]byte
	for i := 0; i < 256; i++ {
		c := byte(i)
		for b := 0; b < 8; b++ {
			if c&0x80 != 0 {
				c = (c << 1) ^ poly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return t
}()

// Update8 folds b into the running CRC-8 value.
func Update8(c CRC8, b []byte) CRC8 {
	for _, x := range b {
		c = CRC8(table8[byte(c)^x])
	}
	return c
}

// Checksum8 computes the CRC-8/CCITT of b.
func Checksum8(b []byte) CRC8 {
	return Update8(0, b)
}

// CRC16 is a CRC-16/ANSI (IBM) accumulator (polynomial 0x8005, reflected).
type CRC16 uint16

var table16 = func() [256]uint16 {
	const poly = 0xA001 // 0x8005 bit-reflected
	var t [256]uint16
	for i := 0; i < 256; i++ {
		c := uint16(i)
		for b := 0; b < 8; b++ {
			if c&1 != 0 {
				c = (c >> 1) ^ poly
			} else {
				c >>= 1
			}
		}
		t[i] = c
	}
	return t
}()

// Update16 folds b into the running CRC-16 value.
func Update16(c CRC16, b []byte) CRC16 {
	for _, x := range b {
		c = CRC16(table16[byte(c)^x]) ^ (c >> 8)
	}
	return c
}

// Checksum16 computes the CRC-16/ANSI of b.
func Checksum16(b []byte) CRC16 {
	return Update16(0, b)
}

// CRC32C is a CRC-32 (Castagnoli) accumulator, matching the stdlib
// hash/crc32 table for that polynomial.
type CRC32C uint32

var table32c = crc32.MakeTable(crc32.Castagnoli)

// Update32C folds b into the running CRC-32C value.
func Update32C(c CRC32C, b []byte) CRC32C {
	return CRC32C(crc32.Update(uint32(c), table32c, b))
}

// Checksum32C computes the CRC-32C of b.
func Checksum32C(b []byte) CRC32C {
	return Update32C(0, b)
}
