package trace

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Tensor is a named float32 tensor to be written to a safetensors file.
type Tensor struct {
	Shape []int
	Data  []float32
}

type headerEntry struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// WriteSafetensors stores tensors as little endian F32 in the safetensors
// layout: an 8 byte header length, a JSON header, then the raw data.
func WriteSafetensors(path string, tensors map[string]Tensor) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]headerEntry, len(names))
	offset := 0
	for _, name := range names {
		t := tensors[name]
		if product(t.Shape) != len(t.Data) {
			return fmt.Errorf("tensor %s: shape %v does not hold %d values", name, t.Shape, len(t.Data))
		}
		size := 4 * len(t.Data)
		header[name] = headerEntry{DType: "F32", Shape: t.Shape, DataOffsets: [2]int{offset, offset + size}}
		offset += size
	}

	hdr, err := json.Marshal(header)
	if err != nil {
		return err
	}
	// pad so the data starts 8 byte aligned
	for len(hdr)%8 != 0 {
		hdr = append(hdr, ' ')
	}

	buf := make([]byte, 8+len(hdr)+offset)
	binary.LittleEndian.PutUint64(buf, uint64(len(hdr)))
	copy(buf[8:], hdr)
	pos := 8 + len(hdr)
	for _, name := range names {
		for _, v := range tensors[name].Data {
			binary.LittleEndian.PutUint32(buf[pos:], math.Float32bits(v))
			pos += 4
		}
	}
	return os.WriteFile(path, buf, 0644)
}
