// Package dataparser defines the DataParser collaborator (spec.md §1:
// "compression/serialization codec selection, configured, not designed
// here") and supplies the zstd + jsoniter codec this deployment configures
// by default. Every RecordPacket's Value blob (pkg/domain.RecordPacket) is
// produced and consumed through this package, so entity code never
// imports a JSON or compression library directly.
//
// Grounded on the teacher's pkg/eventprocessor/eventfeed/impl/eventfeed.go,
// which builds a jsoniter.Config once at package scope and reuses it for
// every event's payload marshaling; the compression layer is new (the
// teacher never compresses event payloads), using klauspost/compress
// since it is already a teacher go.mod dependency.
package dataparser

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/zstd"

	jsoniter "github.com/json-iterator/go"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// Parser is the DataParser contract: turn a decoded domain value into the
// opaque blob a RecordPacket carries, and back. Implementations choose
// their own wire format; callers never inspect the bytes.
type Parser interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// json is shared across every Encode/Decode call, matching the teacher's
// single package-scoped jsoniter.Config instance.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ZstdJSON encodes values as JSON then compresses the result with zstd;
// this is the reference DataParser wired into cmd/api by default.
type ZstdJSON struct {
	encoderPool sync.Pool
	decoderPool sync.Pool
}

// NewZstdJSON builds a ready-to-use ZstdJSON codec. Encoders/decoders are
// pooled since zstd's are not safe for concurrent use but are expensive to
// construct per call.
func NewZstdJSON() *ZstdJSON {
	return &ZstdJSON{
		encoderPool: sync.Pool{
			New: func() interface{} {
				enc, err := zstd.NewWriter(nil)
				if err != nil {
					panic(err) // only fails on invalid options, never at runtime
				}
				return enc
			},
		},
		decoderPool: sync.Pool{
			New: func() interface{} {
				dec, err := zstd.NewReader(nil)
				if err != nil {
					panic(err)
				}
				return dec
			},
		},
	}
}

var _ Parser = (*ZstdJSON)(nil)

// Encode marshals v to JSON and compresses it.
func (z *ZstdJSON) Encode(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecodeFailure, err, "marshaling record")
	}
	enc := z.encoderPool.Get().(*zstd.Encoder)
	defer z.encoderPool.Put(enc)

	var buf bytes.Buffer
	enc.Reset(&buf)
	if _, err := enc.Write(raw); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecodeFailure, err, "compressing record")
	}
	if err := enc.Close(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecodeFailure, err, "closing compressor")
	}
	return buf.Bytes(), nil
}

// Decode decompresses data and unmarshals it into v.
func (z *ZstdJSON) Decode(data []byte, v interface{}) error {
	dec := z.decoderPool.Get().(*zstd.Decoder)
	defer z.decoderPool.Put(dec)

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.KindDecodeFailure, err, "decompressing record")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.Wrap(apperrors.KindDecodeFailure, err, "unmarshaling record")
	}
	return nil
}

// PlainJSON skips compression; useful for tests and for small deployments
// where the decompression CPU cost outweighs the bandwidth saved.
type PlainJSON struct{}

var _ Parser = PlainJSON{}

func (PlainJSON) Encode(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDecodeFailure, err, "marshaling record")
	}
	return raw, nil
}

func (PlainJSON) Decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.Wrap(apperrors.KindDecodeFailure, err, "unmarshaling record")
	}
	return nil
}
