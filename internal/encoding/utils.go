// Package encoding implements the wire-level serialization shared by the
// store and buffer: length-prefixed little-endian float32 vectors and
// JSON-encoded metadata.
package encoding

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVector is returned when a vector is invalid or its encoded
// form is truncated/malformed.
var ErrInvalidVector = errors.New("invalid vector")

// EncodeVector encodes a float32 vector as a little-endian int32 length
// prefix followed by its little-endian float32 values.
func EncodeVector(vector []float32) ([]byte, error) {
	if vector == nil {
		return nil, ErrInvalidVector
	}

	vectorLen := len(vector)
	if vectorLen > math.MaxInt32 {
		return nil, fmt.Errorf("vector too large: %d elements exceeds maximum", vectorLen)
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, int32(vectorLen)); err != nil {
		return nil, fmt.Errorf("encode vector length: %w", err)
	}
	for _, val := range vector {
		if err := binary.Write(buf, binary.LittleEndian, val); err != nil {
			return nil, fmt.Errorf("encode vector value: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, ErrInvalidVector
	}

	r := bytes.NewReader(data)
	var length int32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("decode vector length: %w", err)
	}
	if length < 0 {
		return nil, ErrInvalidVector
	}
	if length == 0 {
		return []float32{}, nil
	}
	if r.Len() < int(length)*4 {
		return nil, ErrInvalidVector
	}

	vector := make([]float32, length)
	for i := range vector {
		if err := binary.Read(r, binary.LittleEndian, &vector[i]); err != nil {
			return nil, fmt.Errorf("decode vector value at index %d: %w", i, err)
		}
	}
	return vector, nil
}

// EncodeMetadata marshals a JSON-typed metadata map to its wire form. A nil
// or empty map encodes as "{}" so every stored row has well-formed JSON.
func EncodeMetadata(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(data), nil
}

// DecodeMetadata is the inverse of EncodeMetadata.
func DecodeMetadata(jsonStr string) (map[string]any, error) {
	if jsonStr == "" {
		return map[string]any{}, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return metadata, nil
}

// ValidateVector rejects a nil/empty vector or one containing NaN/Inf,
// values that would silently corrupt distance computations downstream.
func ValidateVector(vector []float32) error {
	if len(vector) == 0 {
		return ErrInvalidVector
	}
	for _, val := range vector {
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrInvalidVector
		}
	}
	return nil
}
