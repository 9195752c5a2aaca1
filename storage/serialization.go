// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/coursematch/core"
)

// SpaceHeader is everything in a persisted space except its rows.
// Rows are stored separately, one value per course.
type SpaceHeader struct {
	Fingerprint core.Fingerprint
	Config      core.BuildConfig
	Documents   int
	Terms       []string
	Weights     []float64
	Codes       []string
	BuiltAt     time.Time
}

// HeaderOf returns the header part of space.
func HeaderOf(space *core.PersistedSpace) SpaceHeader {
	return SpaceHeader{
		Fingerprint: space.Fingerprint,
		Config:      space.Config,
		Documents:   space.Documents,
		Terms:       space.Terms,
		Weights:     space.Weights,
		Codes:       space.Codes,
		BuiltAt:     space.BuiltAt,
	}
}

// Space combines a header with its rows.
func (h SpaceHeader) Space(rows []core.SparseRow) *core.PersistedSpace {
	return &core.PersistedSpace{
		Fingerprint: h.Fingerprint,
		Config:      h.Config,
		Documents:   h.Documents,
		Terms:       h.Terms,
		Weights:     h.Weights,
		Codes:       h.Codes,
		Rows:        rows,
		BuiltAt:     h.BuiltAt,
	}
}

// MarshalSpaceHeader serializes a SpaceHeader to bytes.
func MarshalSpaceHeader(header SpaceHeader) []byte {
	buf := make([]byte, sizeHeader(header))
	marshalHeader(header, buf)
	return buf
}

// UnmarshalSpaceHeader deserializes a SpaceHeader from bytes.
func UnmarshalSpaceHeader(data []byte) (SpaceHeader, error) {
	header, n, err := unmarshalHeader(data)
	if err != nil {
		return SpaceHeader{}, fmt.Errorf("%w: space header: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return SpaceHeader{}, fmt.Errorf("%w: space header has %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return header, nil
}

// MarshalSparseRow serializes a SparseRow to bytes.
func MarshalSparseRow(row core.SparseRow) []byte {
	buf := make([]byte, sizeRow(row))
	marshalRow(row, buf)
	return buf
}

// UnmarshalSparseRow deserializes a SparseRow from bytes.
func UnmarshalSparseRow(data []byte) (core.SparseRow, error) {
	row, n, err := unmarshalRow(data)
	if err != nil {
		return core.SparseRow{}, fmt.Errorf("%w: row: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return core.SparseRow{}, fmt.Errorf("%w: row has %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	if len(row.Indices) != len(row.Values) {
		return core.SparseRow{}, fmt.Errorf("%w: row has %d indices and %d values",
			ErrSerializationFailed, len(row.Indices), len(row.Values))
	}
	return row, nil
}

// MarshalGeneration serializes a manifest generation number to bytes.
func MarshalGeneration(gen uint64) []byte {
	buf := make([]byte, varint.Uint64.Size(gen))
	varint.Uint64.Marshal(gen, buf)
	return buf
}

// UnmarshalGeneration deserializes a manifest generation number from bytes.
func UnmarshalGeneration(data []byte) (uint64, error) {
	gen, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: manifest: %w", ErrSerializationFailed, err)
	}
	return gen, nil
}

func sizeHeader(h SpaceHeader) int {
	size := varint.PositiveInt.Size(h.Fingerprint.Count)
	size += ord.String.Size(h.Fingerprint.Hash)
	size += sizeConfig(h.Config)
	size += varint.PositiveInt.Size(h.Documents)
	size += sizeSlice(h.Terms, ord.String.Size)
	size += sizeSlice(h.Weights, raw.Float64.Size)
	size += sizeSlice(h.Codes, ord.String.Size)
	size += varint.Int64.Size(h.BuiltAt.UnixMicro())
	return size
}

func marshalHeader(h SpaceHeader, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(h.Fingerprint.Count, bs)
	n += ord.String.Marshal(h.Fingerprint.Hash, bs[n:])
	n += marshalConfig(h.Config, bs[n:])
	n += varint.PositiveInt.Marshal(h.Documents, bs[n:])
	n += marshalSlice(h.Terms, bs[n:], ord.String.Marshal)
	n += marshalSlice(h.Weights, bs[n:], raw.Float64.Marshal)
	n += marshalSlice(h.Codes, bs[n:], ord.String.Marshal)
	n += varint.Int64.Marshal(h.BuiltAt.UnixMicro(), bs[n:])
	return n
}

func unmarshalHeader(bs []byte) (h SpaceHeader, n int, err error) {
	var n1 int
	h.Fingerprint.Count, n, err = varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	h.Fingerprint.Hash, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	h.Config, n1, err = unmarshalConfig(bs[n:])
	n += n1
	if err != nil {
		return
	}
	h.Documents, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	h.Terms, n1, err = unmarshalSlice(bs[n:], ord.String.Unmarshal)
	n += n1
	if err != nil {
		return
	}
	h.Weights, n1, err = unmarshalSlice(bs[n:], raw.Float64.Unmarshal)
	n += n1
	if err != nil {
		return
	}
	h.Codes, n1, err = unmarshalSlice(bs[n:], ord.String.Unmarshal)
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	h.BuiltAt = time.UnixMicro(micros).UTC()
	return
}

func sizeConfig(c core.BuildConfig) int {
	return varint.PositiveInt.Size(c.NgramMin) +
		varint.PositiveInt.Size(c.NgramMax) +
		varint.PositiveInt.Size(c.MaxFeatures) +
		varint.PositiveInt.Size(c.MinDF) +
		raw.Float64.Size(c.MaxDF) +
		ord.Bool.Size(c.StopWords)
}

func marshalConfig(c core.BuildConfig, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(c.NgramMin, bs)
	n += varint.PositiveInt.Marshal(c.NgramMax, bs[n:])
	n += varint.PositiveInt.Marshal(c.MaxFeatures, bs[n:])
	n += varint.PositiveInt.Marshal(c.MinDF, bs[n:])
	n += raw.Float64.Marshal(c.MaxDF, bs[n:])
	n += ord.Bool.Marshal(c.StopWords, bs[n:])
	return n
}

func unmarshalConfig(bs []byte) (c core.BuildConfig, n int, err error) {
	ints := []*int{&c.NgramMin, &c.NgramMax, &c.MaxFeatures, &c.MinDF}
	var n1 int
	for _, field := range ints {
		*field, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	c.MaxDF, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.StopWords, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return
}

func sizeRow(r core.SparseRow) int {
	return sizeSlice(r.Indices, varint.PositiveInt.Size) + sizeSlice(r.Values, raw.Float64.Size)
}

func marshalRow(r core.SparseRow, bs []byte) (n int) {
	n = marshalSlice(r.Indices, bs, varint.PositiveInt.Marshal)
	n += marshalSlice(r.Values, bs[n:], raw.Float64.Marshal)
	return n
}

func unmarshalRow(bs []byte) (r core.SparseRow, n int, err error) {
	r.Indices, n, err = unmarshalSlice(bs, varint.PositiveInt.Unmarshal)
	if err != nil {
		return
	}
	var n1 int
	r.Values, n1, err = unmarshalSlice(bs[n:], raw.Float64.Unmarshal)
	n += n1
	return
}

// Slices are a positive varint length followed by the elements.

func sizeSlice[T any](s []T, size func(T) int) int {
	total := varint.PositiveInt.Size(len(s))
	for _, v := range s {
		total += size(v)
	}
	return total
}

func marshalSlice[T any](s []T, bs []byte, marshal func(T, []byte) int) (n int) {
	n = varint.PositiveInt.Marshal(len(s), bs)
	for _, v := range s {
		n += marshal(v, bs[n:])
	}
	return n
}

func unmarshalSlice[T any](bs []byte, unmarshal func([]byte) (T, int, error)) (s []T, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	// Every element takes at least one byte.
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	s = make([]T, length)
	var n1 int
	for i := range s {
		s[i], n1, err = unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return s, n, nil
}
