package hdt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/KonradHoeffner/hdt/internal/ciheader"
	"github.com/KonradHoeffner/hdt/internal/dict"
	"github.com/KonradHoeffner/hdt/internal/triples"
	"github.com/KonradHoeffner/hdt/internal/varint"
)

const magic = "$HDT"

const (
	globalFormatURI = "<http://purl.org/HDT/hdt#HDTv1>"
	headerFormat    = "ntriples"
	dictFormatURI   = "<http://purl.org/HDT/hdt#dictionaryFour>"
)

// Load parses an HDT container read whole from r and builds an immutable
// Store (spec.md §6). Construction is single-threaded and blocks the
// caller until the store is fully resident or the build fails; no partial
// state is retained on error.
func Load(r io.Reader) (*Store, error) {
	br := bufio.NewReader(r)

	var magicBuf [4]byte
	if _, err := io.ReadFull(br, magicBuf[:]); err != nil {
		return nil, fmt.Errorf("hdt: read magic: %w", err)
	}
	if string(magicBuf[:]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormatUnsupported, magicBuf[:])
	}

	globalCI, err := ciheader.Parse(br)
	if err != nil {
		return nil, wrapSection("global", err)
	}
	if globalCI.Kind != ciheader.Global {
		return nil, fmt.Errorf("%w: expected global control info, got %v", ErrFormatUnsupported, globalCI.Kind)
	}
	if globalCI.Format != globalFormatURI {
		return nil, fmt.Errorf("%w: global format %q", ErrFormatUnsupported, globalCI.Format)
	}

	header, err := loadHeader(br)
	if err != nil {
		return nil, err
	}

	d, err := loadDictionary(br)
	if err != nil {
		return nil, err
	}

	bt, err := triples.Parse(br)
	if err != nil {
		return nil, wrapSection("triples", err)
	}
	if err := bt.ValidateIDRange(d.NumSubjects(), d.NumPredicates(), d.NumObjects()); err != nil {
		return nil, wrapSection("triples", err)
	}

	foq := triples.BuildFoQ(bt, d.NumPredicates())

	return &Store{header: header, dict: d, bt: bt, foq: foq}, nil
}

func loadHeader(br *bufio.Reader) ([]byte, error) {
	ci, err := ciheader.Parse(br)
	if err != nil {
		return nil, wrapSection("header", err)
	}
	if ci.Kind != ciheader.Header {
		return nil, fmt.Errorf("%w: expected header control info, got %v", ErrFormatUnsupported, ci.Kind)
	}
	if ci.Format != headerFormat {
		return nil, fmt.Errorf("%w: header format %q", ErrFormatUnsupported, ci.Format)
	}
	n, err := varint.Read(br)
	if err != nil {
		return nil, fmt.Errorf("hdt: header: read length: %w", err)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(br, payload); err != nil {
		return nil, fmt.Errorf("hdt: header: read payload: %w", err)
	}
	return payload, nil
}

func loadDictionary(br *bufio.Reader) (*dict.Dictionary, error) {
	ci, err := ciheader.Parse(br)
	if err != nil {
		return nil, wrapSection("dictionary", err)
	}
	if ci.Kind != ciheader.Dictionary {
		return nil, fmt.Errorf("%w: expected dictionary control info, got %v", ErrFormatUnsupported, ci.Kind)
	}
	if ci.Format != dictFormatURI {
		return nil, fmt.Errorf("%w: dictionary format %q", ErrFormatUnsupported, ci.Format)
	}
	d, err := dict.Parse(br)
	if err != nil {
		return nil, wrapSection("dictionary", err)
	}
	return d, nil
}

// writeContainer composes a full HDT byte stream from an already-built
// dictionary and BT. It exists for test fixtures only: the core has no
// write path (spec.md §1 non-goals), so this is unexported and never
// reachable from the public API.
func writeContainer(w io.Writer, header []byte, d *dict.Dictionary, bt *triples.BT) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	globalCI := ciheader.New(ciheader.Global, globalFormatURI)
	if err := globalCI.Serialize(w); err != nil {
		return err
	}

	headerCI := ciheader.New(ciheader.Header, headerFormat)
	if err := headerCI.Serialize(w); err != nil {
		return err
	}
	lenBuf := varint.Append(nil, uint64(len(header)))
	if _, err := w.Write(lenBuf); err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return err
	}

	dictCI := ciheader.New(ciheader.Dictionary, dictFormatURI)
	dictCI.SetUint(ciheader.PropMapping, 1)
	dictCI.SetUint(ciheader.PropElements, uint64(d.NumSubjects()+d.NumPredicates()+d.NumObjects()-d.NumShared()))
	if err := dictCI.Serialize(w); err != nil {
		return err
	}
	if err := d.Serialize(w); err != nil {
		return err
	}

	return bt.Serialize(w)
}

// LoadFile mmaps path and builds a Store from its contents. The mapping is
// released once every section has been copied into the store's own
// buffers; the returned Store holds no reference to the file or its
// mapping.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hdt: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("hdt: mmap %s: %w", path, err)
	}
	defer m.Unmap()

	return Load(bytes.NewReader(m))
}
