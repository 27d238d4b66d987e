package vectorindex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
)

const (
	magic         = "CRAGFLAT"
	formatVersion = uint16(1)
	maxModelIDLen = 1 << 10
)

// ErrCorrupt signals an unreadable index stream.
var ErrCorrupt = errors.New("corrupt index file")

// Header describes a persisted index.
type Header struct {
	Dim     int
	Count   int
	ModelID string
}

// Write serializes the index as a zstd stream: magic, version, dimension,
// count, model id, then little-endian float32 rows.
func (f *Flat) Write(w io.Writer, modelID string) error {
	if len(modelID) > maxModelIDLen {
		return fmt.Errorf("model id too long: %d bytes", len(modelID))
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	bw := bufio.NewWriter(zw)

	hdr := make([]byte, 0, len(magic)+2+4+8+2+len(modelID))
	hdr = append(hdr, magic...)
	hdr = binary.LittleEndian.AppendUint16(hdr, formatVersion)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(f.dim))
	hdr = binary.LittleEndian.AppendUint64(hdr, uint64(f.Len()))
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(len(modelID)))
	hdr = append(hdr, modelID...)
	if _, err := bw.Write(hdr); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write header: %w", err)
	}

	var buf [4]byte
	for _, x := range f.data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(x))
		if _, err := bw.Write(buf[:]); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write vectors: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = zw.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zstd: %w", err)
	}
	return nil
}

// Read deserializes an index written by Write.
func Read(r io.Reader) (*Flat, Header, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, Header{}, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()
	br := bufio.NewReader(zr)

	fixed := make([]byte, len(magic)+2+4+8+2)
	if _, err := io.ReadFull(br, fixed); err != nil {
		return nil, Header{}, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if string(fixed[:len(magic)]) != magic {
		return nil, Header{}, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	off := len(magic)
	if v := binary.LittleEndian.Uint16(fixed[off:]); v != formatVersion {
		return nil, Header{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	off += 2
	dim := int(binary.LittleEndian.Uint32(fixed[off:]))
	off += 4
	count := binary.LittleEndian.Uint64(fixed[off:])
	off += 8
	idLen := int(binary.LittleEndian.Uint16(fixed[off:]))
	if idLen > maxModelIDLen {
		return nil, Header{}, fmt.Errorf("%w: model id length %d", ErrCorrupt, idLen)
	}
	if dim <= 0 && count > 0 {
		return nil, Header{}, fmt.Errorf("%w: zero dimension with %d vectors", ErrCorrupt, count)
	}
	if dim > 0 && count > uint64(math.MaxInt/dim) {
		return nil, Header{}, fmt.Errorf("%w: %d vectors of dimension %d", ErrCorrupt, count, dim)
	}

	id := make([]byte, idLen)
	if _, err := io.ReadFull(br, id); err != nil {
		return nil, Header{}, fmt.Errorf("%w: model id: %w", ErrCorrupt, err)
	}

	total := int(count) * dim
	f := &Flat{dim: dim, data: make([]float32, 0, min(total, 1<<22))}
	var buf [4]byte
	for range total {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, Header{}, fmt.Errorf("%w: vectors: %w", ErrCorrupt, err)
		}
		f.data = append(f.data, math.Float32frombits(binary.LittleEndian.Uint32(buf[:])))
	}

	return f, Header{Dim: dim, Count: int(count), ModelID: string(id)}, nil
}
