// Package embedding provides helpers shared by embedding provider
// adapters: the vector storage codec and batch partitioning.
package embedding

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToBytes converts a vector to its compact little-endian binary form
// used for column storage. The transform is reversible with no
// precision loss beyond float32 width.
func ToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// FromBytes converts the binary storage form back to a vector.
func FromBytes(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// ToVectorString renders a vector in the textual array form required by
// similarity-search query parameters, e.g. "[0.25,-0.5,1]".
func ToVectorString(floats []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range floats {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseVectorString parses the textual array form back into a vector.
func ParseVectorString(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("parse vector: missing brackets")
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}

	parts := strings.Split(inner, ",")
	floats := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector element %d: %w", i, err)
		}
		floats[i] = float32(v)
	}
	return floats, nil
}
