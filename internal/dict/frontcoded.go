// Package dict implements the front-coded dictionary section and the
// four-partition dictionary composed from four of them (spec.md §4.4,
// §4.5).
package dict

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/KonradHoeffner/hdt/internal/crc"
	"github.com/KonradHoeffner/hdt/internal/packedarray"
	"github.com/KonradHoeffner/hdt/internal/varint"
	"github.com/KonradHoeffner/hdt/internal/wireerr"
)

// Tag is the section type byte for a front-coded dictionary section; the
// wire format mandates the literal value 2 (spec.md §4.4 item 1).
const Tag = 2

// DefaultBlockSize is the block size used when Build is not given one
// explicitly (spec.md notes the real block size is file-dependent and
// must always be read from the header, never assumed).
const DefaultBlockSize = 16

var (
	ErrCorrupt           = wireerr.ErrCorrupt
	ErrFormatUnsupported = wireerr.ErrFormatUnsupported
	ErrInvalidTerm       = wireerr.ErrInvalidTerm
)

// Section is one front-coded block of strictly ascending, front-coded byte
// strings, addressable by 1-based index.
type Section struct {
	n         int
	blockSize int
	payload   []byte
	bo        *packedarray.PackedArray // byte offset of each block's literal within payload
}

// Build front-codes a slice of strictly ascending, unique byte strings
// using the default block size.
func Build(strings [][]byte) (*Section, error) {
	return BuildBlockSize(strings, DefaultBlockSize)
}

// BuildBlockSize front-codes strings using the given block size.
func BuildBlockSize(strings [][]byte, blockSize int) (*Section, error) {
	if blockSize < 1 {
		blockSize = DefaultBlockSize
	}
	for i, s := range strings {
		if bytes.IndexByte(s, 0) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTerm, s)
		}
		if i > 0 && bytes.Compare(strings[i-1], s) >= 0 {
			return nil, fmt.Errorf("%w: dictionary strings not strictly ascending at index %d", ErrCorrupt, i)
		}
	}

	n := len(strings)
	numBlocks := 0
	if n > 0 {
		numBlocks = (n + blockSize - 1) / blockSize
	}

	var payload []byte
	literalOffsets := make([]uint64, numBlocks)

	for blk := 0; blk < numBlocks; blk++ {
		start := blk * blockSize
		end := start + blockSize
		if end > n {
			end = n
		}
		literalOffsets[blk] = uint64(len(payload))
		payload = append(payload, strings[start]...)
		payload = append(payload, 0)

		prev := strings[start]
		for i := start + 1; i < end; i++ {
			cur := strings[i]
			shared := commonPrefixLen(prev, cur)
			payload = varint.Append(payload, uint64(shared))
			payload = append(payload, cur[shared:]...)
			payload = append(payload, 0)
			prev = cur
		}
	}

	return &Section{
		n:         n,
		blockSize: blockSize,
		payload:   payload,
		bo:        packedarray.Build(literalOffsets),
	}, nil
}

func commonPrefixLen(a, b []byte) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	i := 0
	for i < max && a[i] == b[i] {
		i++
	}
	return i
}

// NumStrings returns the number of strings in the section.
func (s *Section) NumStrings() int { return s.n }

// Extract returns the string at the given 1-based id.
func (s *Section) Extract(id int) ([]byte, error) {
	if id < 1 || id > s.n {
		return nil, fmt.Errorf("%w: dictionary id %d out of range [1,%d]", wireerr.ErrIDOutOfRange, id, s.n)
	}
	blk := (id - 1) / s.blockSize
	within := (id - 1) % s.blockSize
	return s.reconstruct(blk, within)
}

// reconstruct walks forward from a block's literal to the within-th entry
// of that block (0-based), applying shared-prefix reconstructions.
func (s *Section) reconstruct(blk, within int) ([]byte, error) {
	off := int(s.bo.Get(blk))
	literal, next, err := readNulString(s.payload, off)
	if err != nil {
		return nil, err
	}
	cur := append([]byte(nil), literal...)
	for i := 0; i < within; i++ {
		shared, suffix, n2, err := readSharedSuffix(s.payload, next)
		if err != nil {
			return nil, err
		}
		if shared > len(cur) {
			return nil, fmt.Errorf("%w: front-coding shared prefix longer than previous entry", wireerr.ErrCorrupt)
		}
		cur = append(append([]byte(nil), cur[:shared]...), suffix...)
		next = n2
	}
	return cur, nil
}

func readNulString(buf []byte, off int) (s []byte, next int, err error) {
	i := bytes.IndexByte(buf[off:], 0)
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: unterminated dictionary literal", wireerr.ErrCorrupt)
	}
	return buf[off : off+i], off + i + 1, nil
}

func readSharedSuffix(buf []byte, off int) (shared int, suffix []byte, next int, err error) {
	v, n := varint.Uvarint(buf[off:])
	if n <= 0 {
		return 0, nil, 0, fmt.Errorf("%w: malformed shared-prefix length", wireerr.ErrCorrupt)
	}
	off += n
	i := bytes.IndexByte(buf[off:], 0)
	if i < 0 {
		return 0, nil, 0, fmt.Errorf("%w: unterminated dictionary suffix", wireerr.ErrCorrupt)
	}
	return int(v), buf[off : off+i], off + i + 1, nil
}

// Locate returns the 1-based id of key, or 0 if key is not present.
func (s *Section) Locate(key []byte) (int, error) {
	if bytes.IndexByte(key, 0) >= 0 {
		return 0, ErrInvalidTerm
	}
	if s.n == 0 {
		return 0, nil
	}
	numBlocks := s.bo.Len()

	// Binary search for the last block whose literal is <= key.
	blk := sort.Search(numBlocks, func(i int) bool {
		lit, _, err := readNulString(s.payload, int(s.bo.Get(i)))
		if err != nil {
			return false
		}
		return bytes.Compare(lit, key) > 0
	}) - 1
	if blk < 0 {
		return 0, nil
	}

	start := blk * s.blockSize
	end := start + s.blockSize
	if end > s.n {
		end = s.n
	}
	for i := 0; i < end-start; i++ {
		cur, err := s.reconstruct(blk, i)
		if err != nil {
			return 0, err
		}
		c := bytes.Compare(cur, key)
		if c == 0 {
			return start + i + 1, nil
		}
		if c > 0 {
			return 0, nil
		}
	}
	return 0, nil
}

// Serialize writes the section in the on-disk format of spec.md §4.4.
func (s *Section) Serialize(w io.Writer) error {
	var hdr []byte
	hdr = append(hdr, Tag)
	hdr = varint.Append(hdr, uint64(s.n))
	hdr = varint.Append(hdr, uint64(len(s.payload)))
	hdr = append(hdr, byte(s.blockSize))
	hdr = append(hdr, byte(crc.Checksum8(hdr)))
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	var boBuf bytes.Buffer
	if err := s.bo.Serialize(&boBuf); err != nil {
		return err
	}

	sum := crc.Checksum32C(s.payload)
	sum = crc.Update32C(sum, boBuf.Bytes())

	if _, err := w.Write(s.payload); err != nil {
		return err
	}
	if _, err := w.Write(boBuf.Bytes()); err != nil {
		return err
	}
	var tail [4]byte
	putUint32LE(tail[:], uint32(sum))
	_, err := w.Write(tail[:])
	return err
}

// ParseSection reads a front-coded dictionary section previously written
// by Serialize.
func ParseSection(r *bufio.Reader) (*Section, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("dict: read tag: %w", err)
	}
	if tag != Tag {
		return nil, fmt.Errorf("%w: dictionary section tag %d (want 2)", ErrFormatUnsupported, tag)
	}
	n, err := varint.Read(r)
	if err != nil {
		return nil, fmt.Errorf("dict: read n: %w", err)
	}
	payloadLen, err := varint.Read(r)
	if err != nil {
		return nil, fmt.Errorf("dict: read payload length: %w", err)
	}
	blockSizeB, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("dict: read block size: %w", err)
	}

	var hdr []byte
	hdr = append(hdr, tag)
	hdr = varint.Append(hdr, n)
	hdr = varint.Append(hdr, payloadLen)
	hdr = append(hdr, blockSizeB)

	wantCRC8, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("dict: read header crc: %w", err)
	}
	if byte(crc.Checksum8(hdr)) != wantCRC8 {
		return nil, fmt.Errorf("%w: dictionary section header CRC", ErrCorrupt)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("dict: read payload: %w", err)
	}

	bo, err := packedarray.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dict: read block offsets: %w", err)
	}
	var boBuf bytes.Buffer
	if err := bo.Serialize(&boBuf); err != nil {
		return nil, fmt.Errorf("dict: re-encode block offsets: %w", err)
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return nil, fmt.Errorf("dict: read section crc: %w", err)
	}
	wantCRC32 := uint32LE(crcBuf[:])
	sum := crc.Checksum32C(payload)
	sum = crc.Update32C(sum, boBuf.Bytes())
	if uint32(sum) != wantCRC32 {
		return nil, fmt.Errorf("%w: dictionary section payload CRC", ErrCorrupt)
	}

	sec := &Section{n: int(n), blockSize: int(blockSizeB), payload: payload, bo: bo}
	if err := sec.validateAscending(); err != nil {
		return nil, err
	}
	return sec, nil
}

// validateAscending reconstructs every entry in order and checks it is
// strictly greater than its predecessor, rejecting a crafted section whose
// CRC matches but whose front-coded entries are out of order or repeated
// (spec.md §7: "non-ascending dictionary order" is a Corrupt condition).
func (s *Section) validateAscending() error {
	if s.n == 0 {
		return nil
	}
	numBlocks := s.bo.Len()
	var prev []byte
	idx := 0
	for blk := 0; blk < numBlocks; blk++ {
		start := blk * s.blockSize
		end := start + s.blockSize
		if end > s.n {
			end = s.n
		}
		for within := 0; within < end-start; within++ {
			cur, err := s.reconstruct(blk, within)
			if err != nil {
				return err
			}
			if idx > 0 && bytes.Compare(prev, cur) >= 0 {
				return fmt.Errorf("%w: dictionary strings not strictly ascending at index %d", ErrCorrupt, idx)
			}
			prev = cur
			idx++
		}
	}
	return nil
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
