// Package packedarray implements the bit-packed fixed-width integer array
// of spec.md §4.2: N unsigned integers, each stored in exactly W bits with
// no per-element padding, O(1) random access.
package packedarray

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"

	"github.com/KonradHoeffner/hdt/internal/crc"
	"github.com/KonradHoeffner/hdt/internal/varint"
	"github.com/KonradHoeffner/hdt/internal/wireerr"
)

// Tag is the on-disk type byte identifying a packed integer array.
const Tag = 4

var (
	ErrCorrupt           = wireerr.ErrCorrupt
	ErrFormatUnsupported = wireerr.ErrFormatUnsupported
)

// PackedArray is an immutable (after Build/Parse) array of n integers, each
// w bits wide.
type PackedArray struct {
	words []uint64
	w     uint
	n     int
}

// WidthFor returns the minimal bit width able to represent every value up
// to and including max (0 maps to width 0, meaning "no storage needed").
func WidthFor(max uint64) uint {
	if max == 0 {
		return 0
	}
	return uint(64 - bits.LeadingZeros64(max))
}

// New allocates a zeroed packed array of n elements, each w bits wide.
func New(w uint, n int) *PackedArray {
	if w > 64 {
		panic("packedarray.New: width > 64")
	}
	if n < 0 {
		panic("packedarray.New: negative length")
	}
	nWords := 0
	if w > 0 && n > 0 {
		nWords = int((uint64(n)*uint64(w)+63)/64) + 1 // +1 guard word for Get's 2-word read
	}
	return &PackedArray{words: make([]uint64, nWords), w: w, n: n}
}

// Build packs values into the minimal width able to represent their
// maximum element.
func Build(values []uint64) *PackedArray {
	var max uint64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	w := WidthFor(max)
	p := New(w, len(values))
	for i, v := range values {
		p.Set(i, v)
	}
	return p
}

// Len returns the number of elements.
func (p *PackedArray) Len() int { return p.n }

// Width returns the per-element bit width.
func (p *PackedArray) Width() uint { return p.w }

// Get returns the value at index i.
func (p *PackedArray) Get(i int) uint64 {
	if i < 0 || i >= p.n {
		panic("packedarray: Get index out of range")
	}
	if p.w == 0 {
		return 0
	}
	bitPos := uint64(i) * uint64(p.w)
	wordIdx := bitPos / 64
	bitOff := bitPos % 64

	lo := p.words[wordIdx] >> bitOff
	if bitOff+uint64(p.w) > 64 {
		hi := p.words[wordIdx+1]
		lo |= hi << (64 - bitOff)
	}
	if p.w == 64 {
		return lo
	}
	mask := (uint64(1) << p.w) - 1
	return lo & mask
}

// Set stores v (truncated to w bits) at index i. Used only while building.
func (p *PackedArray) Set(i int, v uint64) {
	if i < 0 || i >= p.n {
		panic("packedarray: Set index out of range")
	}
	if p.w == 0 {
		return
	}
	mask := (uint64(1) << p.w) - 1
	v &= mask
	bitPos := uint64(i) * uint64(p.w)
	wordIdx := bitPos / 64
	bitOff := bitPos % 64

	p.words[wordIdx] &^= mask << bitOff
	p.words[wordIdx] |= v << bitOff
	if bitOff+uint64(p.w) > 64 {
		rem := bitOff + uint64(p.w) - 64
		hiMask := (uint64(1) << rem) - 1
		p.words[wordIdx+1] &^= hiMask
		p.words[wordIdx+1] |= v >> (64 - bitOff)
	}
}

// Serialize writes the array in the on-disk format of spec.md §4.2.
func (p *PackedArray) Serialize(w io.Writer) error {
	var hdr []byte
	hdr = append(hdr, Tag, byte(p.w))
	hdr = varint.Append(hdr, uint64(p.n))
	hdr = append(hdr, byte(crc.Checksum8(hdr)))
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	nBits := uint64(p.n) * uint64(p.w)
	nBytes := (nBits + 7) / 8
	payload := make([]byte, nBytes)
	nWords := int((nBits + 63) / 64)
	for i := 0; i < nWords; i++ {
		var wb [8]byte
		putUint64LE(wb[:], wordAt(p.words, i))
		copy(payload[i*8:], wb[:])
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	sum := crc.Checksum32C(payload)
	var tail [4]byte
	putUint32LE(tail[:], uint32(sum))
	_, err := w.Write(tail[:])
	return err
}

func wordAt(words []uint64, i int) uint64 {
	if i < len(words) {
		return words[i]
	}
	return 0
}

// Parse reads a packed array previously written by Serialize.
func Parse(r *bufio.Reader) (*PackedArray, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("packedarray: read tag: %w", err)
	}
	if tag != Tag {
		return nil, fmt.Errorf("%w: packed array tag %d", ErrFormatUnsupported, tag)
	}
	wb, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("packedarray: read width: %w", err)
	}
	if wb > 64 {
		return nil, fmt.Errorf("%w: packed array width %d > 64", ErrCorrupt, wb)
	}
	n, err := varint.Read(r)
	if err != nil {
		return nil, fmt.Errorf("packedarray: read length: %w", err)
	}

	var hdr []byte
	hdr = append(hdr, tag, wb)
	var tmp [varint.MaxLen64]byte
	nb := varint.Put(tmp[:], n)
	hdr = append(hdr, tmp[:nb]...)

	wantCRC8, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("packedarray: read header crc: %w", err)
	}
	if byte(crc.Checksum8(hdr)) != wantCRC8 {
		return nil, fmt.Errorf("%w: packed array header CRC", ErrCorrupt)
	}

	w := uint(wb)
	nBits := n * uint64(w)
	nBytes := (nBits + 7) / 8
	payload := make([]byte, nBytes)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("packedarray: read payload: %w", err)
	}
	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return nil, fmt.Errorf("packedarray: read payload crc: %w", err)
	}
	if uint32(crc.Checksum32C(payload)) != uint32LE(crcBuf[:]) {
		return nil, fmt.Errorf("%w: packed array payload CRC", ErrCorrupt)
	}

	p := New(w, int(n))
	nWords := int((nBits + 63) / 64)
	for i := 0; i < nWords; i++ {
		off := i * 8
		end := off + 8
		var buf [8]byte
		if end <= len(payload) {
			copy(buf[:], payload[off:end])
		} else {
			copy(buf[:], payload[off:])
		}
		if i < len(p.words) {
			p.words[i] = uint64LE(buf[:])
		}
	}
	return p, nil
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> uint(8*i))
	}
}

func uint64LE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]) << uint(8*i)
	}
	return v
}

func putUint32LE(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> uint(8*i))
	}
}

func uint32LE(b []byte) uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(b[i]) << uint(8*i)
	}
	return v
}
