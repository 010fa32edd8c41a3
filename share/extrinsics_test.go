package share

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_RoundTrip(t *testing.T) {
	extrinsics := [][]byte{
		EncodeExtrinsic(1, []byte("hello")),
		EncodeExtrinsic(1, bytes.Repeat([]byte{0xab}, 300)),
		EncodeExtrinsic(1, nil),
	}

	segment := EncodeSegment(extrinsics)
	require.Zero(t, len(segment)%CellSize)

	decoded, err := DecodeSegment(segment)
	require.NoError(t, err)
	assert.Equal(t, extrinsics, decoded)

	ad := &AppData{AppID: 1, Extrinsics: decoded}
	payloads, err := ad.Decoded()
	require.NoError(t, err)
	require.Len(t, payloads, 3)
	assert.Equal(t, []byte("hello"), payloads[0])
	assert.Len(t, payloads[1], 300)
	assert.Empty(t, payloads[2])
}

func TestSegment_Empty(t *testing.T) {
	segment := EncodeSegment(nil)
	require.Len(t, segment, CellSize)

	decoded, err := DecodeSegment(segment)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeSegment_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		segment func() []byte
	}{
		{
			name: "truncated extrinsic",
			segment: func() []byte {
				seg := EncodeSegment([][]byte{bytes.Repeat([]byte{1}, 40)})
				return seg[:CellSize]
			},
		},
		{
			name: "trailing garbage",
			segment: func() []byte {
				seg := EncodeSegment([][]byte{{1, 2, 3}})
				seg[len(seg)-1] = 0xff
				return seg
			},
		},
		{
			name: "count overflow",
			segment: func() []byte {
				seg := make([]byte, CellSize)
				seg[0], seg[1] = 0xff, 0x7f
				return seg
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSegment(tt.segment())
			require.ErrorIs(t, err, ErrMalformedSegment)
		})
	}
}

func TestAppData_DecodedForeignApp(t *testing.T) {
	ad := &AppData{AppID: 2, Extrinsics: [][]byte{EncodeExtrinsic(3, []byte("x"))}}
	_, err := ad.Decoded()
	require.ErrorIs(t, err, ErrMalformedExtrinsic)

	_, _, err = DecodeExtrinsic([]byte{0x02, 0x01})
	require.ErrorIs(t, err, ErrMalformedExtrinsic)
}
