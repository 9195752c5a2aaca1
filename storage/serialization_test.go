package storage

import (
	"testing"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/coursematch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() SpaceHeader {
	return SpaceHeader{
		Fingerprint: core.Fingerprint{Count: 2, Hash: "abc123"},
		Config:      core.DefaultBuildConfig(),
		Documents:   2,
		Terms:       []string{"data", "data structures", "structures"},
		Weights:     []float64{1.0, 1.4054651081081644, 1.4054651081081644},
		Codes:       []string{"CSE214", "CSE353"},
		BuiltAt:     time.Date(2026, 3, 4, 5, 6, 7, 123456000, time.UTC),
	}
}

func TestMarshalUnmarshalSpaceHeader(t *testing.T) {
	header := testHeader()

	data := MarshalSpaceHeader(header)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalSpaceHeader(data)
	require.NoError(t, err)
	assert.Equal(t, header, decoded)
}

func TestMarshalUnmarshalSpaceHeader_EmptyVocabulary(t *testing.T) {
	header := SpaceHeader{
		Fingerprint: core.Fingerprint{Count: 0, Hash: "e3b0"},
		Config:      core.DefaultBuildConfig(),
		BuiltAt:     time.UnixMicro(0).UTC(),
	}

	decoded, err := UnmarshalSpaceHeader(MarshalSpaceHeader(header))
	require.NoError(t, err)
	assert.Empty(t, decoded.Terms)
	assert.Empty(t, decoded.Weights)
	assert.Empty(t, decoded.Codes)
	assert.Equal(t, header.Config, decoded.Config)
}

func TestMarshalSpaceHeader_TruncatesToMicros(t *testing.T) {
	header := testHeader()
	header.BuiltAt = time.Date(2026, 1, 1, 0, 0, 0, 999, time.UTC)

	decoded, err := UnmarshalSpaceHeader(MarshalSpaceHeader(header))
	require.NoError(t, err)
	assert.Equal(t, header.BuiltAt.Truncate(time.Microsecond), decoded.BuiltAt)
}

func TestUnmarshalSpaceHeader_Invalid(t *testing.T) {
	full := MarshalSpaceHeader(testHeader())

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"truncated", full[:len(full)/2]},
		{"missing last byte", full[:len(full)-1]},
		{"trailing bytes", append(append([]byte{}, full...), 0x01, 0x02)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalSpaceHeader(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestUnmarshalSlice_LengthExceedsBuffer(t *testing.T) {
	bs := make([]byte, varint.PositiveInt.Size(1_000_000)+2)
	varint.PositiveInt.Marshal(1_000_000, bs)

	_, _, err := unmarshalSlice(bs, ord.String.Unmarshal)
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalUnmarshalSparseRow(t *testing.T) {
	tests := []struct {
		name string
		row  core.SparseRow
	}{
		{"single entry", core.SparseRow{Indices: []int{3}, Values: []float64{1}}},
		{"several entries", core.SparseRow{Indices: []int{0, 7, 300}, Values: []float64{0.25, 0.5, 0.8291561975888501}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalSparseRow(MarshalSparseRow(tt.row))
			require.NoError(t, err)
			assert.Equal(t, tt.row, decoded)
		})
	}
}

func TestUnmarshalSparseRow_ZeroRow(t *testing.T) {
	decoded, err := UnmarshalSparseRow(MarshalSparseRow(core.SparseRow{}))
	require.NoError(t, err)
	assert.Empty(t, decoded.Indices)
	assert.Empty(t, decoded.Values)
}

func TestUnmarshalSparseRow_MismatchedLengths(t *testing.T) {
	data := MarshalSparseRow(core.SparseRow{Indices: []int{1, 2}, Values: []float64{0.5}})

	_, err := UnmarshalSparseRow(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalGeneration(t *testing.T) {
	for _, gen := range []uint64{0, 1, 255, 1 << 40} {
		decoded, err := UnmarshalGeneration(MarshalGeneration(gen))
		require.NoError(t, err)
		assert.Equal(t, gen, decoded)
	}

	_, err := UnmarshalGeneration(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
