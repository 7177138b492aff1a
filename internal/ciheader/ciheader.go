// Package ciheader implements the control-information block of spec.md
// §4.3: a section-kind flag byte, a NUL-terminated format URI, a
// NUL-terminated "key=value;" property string, and a trailing CRC-16.
package ciheader

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/KonradHoeffner/hdt/internal/crc"
	"github.com/KonradHoeffner/hdt/internal/wireerr"
)

// Kind identifies which container section a control-information block
// precedes.
type Kind byte

// Recognized section kinds (spec.md §4.3, §6).
const (
	Global Kind = iota + 1
	Header
	Dictionary
	Triples
)

func (k Kind) String() string {
	switch k {
	case Global:
		return "global"
	case Header:
		return "header"
	case Dictionary:
		return "dictionary"
	case Triples:
		return "triples"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

var (
	ErrCorrupt           = wireerr.ErrCorrupt
	ErrFormatUnsupported = wireerr.ErrFormatUnsupported
)

// Known property keys (spec.md §4.3 table).
const (
	PropMapping  = "mapping"
	PropElements = "elements"
	PropNumOcc   = "numOcc"
	PropOrder    = "order"
)

// ControlInfo is one parsed control-information block.
type ControlInfo struct {
	Kind   Kind
	Format string
	Props  map[string]string
}

// New returns an empty control-information block of the given kind and
// format URI.
func New(kind Kind, format string) *ControlInfo {
	return &ControlInfo{Kind: kind, Format: format, Props: make(map[string]string)}
}

// SetUint sets an unsigned integer property.
func (ci *ControlInfo) SetUint(key string, v uint64) {
	if ci.Props == nil {
		ci.Props = make(map[string]string)
	}
	ci.Props[key] = strconv.FormatUint(v, 10)
}

// Uint returns a property as an unsigned integer, or ok=false if absent or
// unparsable.
func (ci *ControlInfo) Uint(key string) (v uint64, ok bool) {
	s, present := ci.Props[key]
	if !present {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// propertyString renders the "key=value;"-joined property string in a
// deterministic (sorted-key) order, so that re-serializing an equivalent
// ControlInfo always produces byte-identical output.
func (ci *ControlInfo) propertyString() string {
	keys := make([]string, 0, len(ci.Props))
	for k := range ci.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(ci.Props[k])
		b.WriteByte(';')
	}
	return b.String()
}

// Serialize writes the control-information block.
func (ci *ControlInfo) Serialize(w io.Writer) error {
	var body []byte
	body = append(body, byte(ci.Kind))
	body = append(body, []byte(ci.Format)...)
	body = append(body, 0)
	body = append(body, []byte(ci.propertyString())...)
	body = append(body, 0)

	sum := crc.Checksum16(body)
	var tail [2]byte
	tail[0] = byte(sum)
	tail[1] = byte(sum >> 8)

	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err := w.Write(tail[:])
	return err
}

// Parse reads one control-information block.
func Parse(r *bufio.Reader) (*ControlInfo, error) {
	kindB, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("ciheader: read kind: %w", err)
	}
	var body []byte
	body = append(body, kindB)

	format, err := readNulString(r, &body)
	if err != nil {
		return nil, fmt.Errorf("ciheader: read format: %w", err)
	}
	propStr, err := readNulString(r, &body)
	if err != nil {
		return nil, fmt.Errorf("ciheader: read properties: %w", err)
	}

	var tail [2]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return nil, fmt.Errorf("ciheader: read crc: %w", err)
	}
	wantCRC16 := uint16(tail[0]) | uint16(tail[1])<<8
	if uint16(crc.Checksum16(body)) != wantCRC16 {
		return nil, fmt.Errorf("%w: control information CRC", ErrCorrupt)
	}

	props, err := parseProps(propStr)
	if err != nil {
		return nil, fmt.Errorf("%w: control information properties: %v", ErrCorrupt, err)
	}

	return &ControlInfo{Kind: Kind(kindB), Format: format, Props: props}, nil
}

func readNulString(r *bufio.Reader, body *[]byte) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", err
	}
	*body = append(*body, s...)
	return s[:len(s)-1], nil // drop the trailing NUL
}

func parseProps(s string) (map[string]string, error) {
	props := make(map[string]string)
	if s == "" {
		return props, nil
	}
	for _, kv := range strings.Split(s, ";") {
		if kv == "" {
			continue
		}
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			return nil, fmt.Errorf("malformed property %q", kv)
		}
		props[kv[:i]] = kv[i+1:]
	}
	return props, nil
}
