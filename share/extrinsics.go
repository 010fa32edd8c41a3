package share

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/multiformats/go-varint"
)

// extrinsicVersion prefixes every data submission envelope.
const extrinsicVersion byte = 0x01

var (
	// ErrMalformedSegment is returned when the cells of an application do not decode into a
	// sequence of extrinsics.
	ErrMalformedSegment = errors.New("share: malformed application segment")
	// ErrMalformedExtrinsic is returned when an extrinsic is not a data submission envelope.
	ErrMalformedExtrinsic = errors.New("share: malformed extrinsic")
)

// AppData is the ordered list of raw extrinsics an application submitted in a block.
type AppData struct {
	AppID       uint32   `json:"app_id"`
	BlockNumber uint32   `json:"block_number"`
	Extrinsics  [][]byte `json:"extrinsics"`
}

// Decoded returns payloads of the extrinsics unwrapped from their submission envelopes.
func (ad *AppData) Decoded() ([][]byte, error) {
	out := make([][]byte, 0, len(ad.Extrinsics))
	for i, ext := range ad.Extrinsics {
		appID, data, err := DecodeExtrinsic(ext)
		if err != nil {
			return nil, fmt.Errorf("extrinsic %d: %w", i, err)
		}
		if appID != ad.AppID {
			return nil, fmt.Errorf("extrinsic %d: %w: app id %d, expected %d",
				i, ErrMalformedExtrinsic, appID, ad.AppID)
		}
		out = append(out, data)
	}
	return out, nil
}

// EncodeExtrinsic wraps a payload into a data submission envelope of the given application.
func EncodeExtrinsic(appID uint32, data []byte) []byte {
	out := make([]byte, 0, 1+varint.UvarintSize(uint64(appID))+varint.UvarintSize(uint64(len(data)))+len(data))
	out = append(out, extrinsicVersion)
	out = append(out, varint.ToUvarint(uint64(appID))...)
	out = append(out, varint.ToUvarint(uint64(len(data)))...)
	return append(out, data...)
}

// DecodeExtrinsic unwraps a data submission envelope.
func DecodeExtrinsic(ext []byte) (appID uint32, data []byte, err error) {
	if len(ext) == 0 || ext[0] != extrinsicVersion {
		return 0, nil, fmt.Errorf("%w: unknown version", ErrMalformedExtrinsic)
	}
	rest := ext[1:]
	id, n, err := varint.FromUvarint(rest)
	if err != nil || id > MaxAppID {
		return 0, nil, fmt.Errorf("%w: app id", ErrMalformedExtrinsic)
	}
	rest = rest[n:]
	size, n, err := varint.FromUvarint(rest)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: length", ErrMalformedExtrinsic)
	}
	rest = rest[n:]
	if uint64(len(rest)) != size {
		return 0, nil, fmt.Errorf("%w: length %d, got %d bytes", ErrMalformedExtrinsic, size, len(rest))
	}
	return uint32(id), rest, nil
}

// EncodeSegment lays out extrinsics of an application as a varint count followed by
// length-prefixed extrinsics, zero padded to a whole number of cells.
func EncodeSegment(extrinsics [][]byte) []byte {
	buf := bytes.NewBuffer(varint.ToUvarint(uint64(len(extrinsics))))
	for _, ext := range extrinsics {
		buf.Write(varint.ToUvarint(uint64(len(ext))))
		buf.Write(ext)
	}
	if rem := buf.Len() % CellSize; rem != 0 {
		buf.Write(make([]byte, CellSize-rem))
	}
	return buf.Bytes()
}

// DecodeSegment parses extrinsics out of the concatenated data cells of an application.
// Anything after the last extrinsic must be zero padding.
func DecodeSegment(segment []byte) ([][]byte, error) {
	count, n, err := varint.FromUvarint(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: count: %w", ErrMalformedSegment, err)
	}
	// every extrinsic takes at least a byte for its length
	if count > uint64(len(segment)) {
		return nil, fmt.Errorf("%w: count %d exceeds segment size", ErrMalformedSegment, count)
	}
	rest := segment[n:]
	extrinsics := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		size, n, err := varint.FromUvarint(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: extrinsic %d length: %w", ErrMalformedSegment, i, err)
		}
		rest = rest[n:]
		if size > uint64(len(rest)) {
			return nil, fmt.Errorf("%w: extrinsic %d is truncated", ErrMalformedSegment, i)
		}
		extrinsics = append(extrinsics, append([]byte(nil), rest[:size]...))
		rest = rest[size:]
	}
	for _, b := range rest {
		if b != 0 {
			return nil, fmt.Errorf("%w: trailing data", ErrMalformedSegment)
		}
	}
	return extrinsics, nil
}
