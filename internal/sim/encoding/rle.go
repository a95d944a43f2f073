package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Symbol is any per-cell value the map exports: heights, coast types, feature ids.
type Symbol interface {
	~uint8 | ~uint16 | ~int
}

// EncodeRLE encodes a per-cell array into base64(varint pairs).
// The pairs are (value, run_len) repeated. Negative ints encode as their
// two's complement bit pattern.
func EncodeRLE[T Symbol](vals []T) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(vals) {
		v := vals[i]
		run := 1
		for j := i + 1; j < len(vals) && vals[j] == v && run < 1<<31; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE reverses EncodeRLE. limit caps the decoded length; zero means no cap.
func DecodeRLE[T Symbol](b64 string, limit int) ([]T, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []T
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if uint64(T(v)) != v {
			return nil, fmt.Errorf("value out of range: %d", v)
		}
		if limit > 0 && uint64(len(out))+run > uint64(limit) {
			return nil, fmt.Errorf("decoded length exceeds %d", limit)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, T(v))
		}
	}
	return out, nil
}
