package vectorstore

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kailas-cloud/trendoscope/internal/domain"
)

// Index file layout: magic "TRVI", uint16 version, uint32 dim, uint32 count,
// then count*dim little-endian float32 values.
const (
	indexMagic   = "TRVI"
	indexVersion = uint16(1)
	headerSize   = 4 + 2 + 4 + 4
)

// encodeIndex serializes vectors. All vectors must share one dimension.
func encodeIndex(dim int, vecs [][]float32) ([]byte, error) {
	for i, v := range vecs {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, index dimension is %d", i, len(v), dim)
		}
	}

	buf := make([]byte, headerSize+len(vecs)*dim*4)
	copy(buf, indexMagic)
	binary.LittleEndian.PutUint16(buf[4:], indexVersion)
	binary.LittleEndian.PutUint32(buf[6:], uint32(dim))
	binary.LittleEndian.PutUint32(buf[10:], uint32(len(vecs)))

	off := headerSize
	for _, v := range vecs {
		for _, f := range v {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf, nil
}

// decodeIndex parses an index file produced by encodeIndex.
func decodeIndex(data []byte) (dim int, vecs [][]float32, err error) {
	if len(data) < headerSize || string(data[:4]) != indexMagic {
		return 0, nil, fmt.Errorf("bad index header: %w", domain.ErrCorruptStore)
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != indexVersion {
		return 0, nil, fmt.Errorf("unsupported index version %d: %w", v, domain.ErrCorruptStore)
	}
	dim = int(binary.LittleEndian.Uint32(data[6:]))
	count := int(binary.LittleEndian.Uint32(data[10:]))

	if want := headerSize + count*dim*4; len(data) != want {
		return 0, nil, fmt.Errorf("index size %d, header implies %d: %w", len(data), want, domain.ErrCorruptStore)
	}

	vecs = make([][]float32, count)
	off := headerSize
	for i := range vecs {
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vecs[i] = v
	}
	return dim, vecs, nil
}
