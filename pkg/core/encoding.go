package core

import (
	"fmt"

	"github.com/synapse-mem/synapse-go/internal/encoding"
)

// encodeVector serializes a float32 vector to its wire form.
func encodeVector(vector []float32) ([]byte, error) {
	b, err := encoding.EncodeVector(vector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return b, nil
}

// decodeVector is the inverse of encodeVector.
func decodeVector(data []byte) ([]float32, error) {
	vec, err := encoding.DecodeVector(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return vec, nil
}

// encodeMetadata marshals a metadata map to its JSON wire form.
func encodeMetadata(metadata map[string]any) ([]byte, error) {
	s, err := encoding.EncodeMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return []byte(s), nil
}

// decodeMetadata is the inverse of encodeMetadata.
func decodeMetadata(data []byte) (map[string]any, error) {
	m, err := encoding.DecodeMetadata(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return m, nil
}
