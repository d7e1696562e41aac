package riffwave

import (
	"errors"
	"fmt"
	"io"
)

// DataChunk describes the location of the raw audio payload. The payload
// bytes themselves are not read during header parsing; DataReader consumes
// them from the source on demand.
type DataChunk struct {
	// Size is the declared payload length in bytes.
	Size uint32
	// Offset is the byte position of the first payload byte in the source.
	Offset int64
	// Padded reports whether a zero pad byte follows the payload, which is
	// the case exactly when the declared size is odd.
	Padded bool
}

// DataReader returns a reader over the raw audio payload. The reader is
// forward-only and single-use: it yields exactly DataChunk.Size bytes
// straight from the source, surfaces ErrTruncated if the source falls short,
// and swallows the trailing pad byte of an odd-sized payload. A second call
// fails with ErrDataConsumed since payload bytes are not buffered.
func (d *Decoder) DataReader() (io.Reader, error) {
	if err := d.readHeaders(); err != nil {
		return nil, err
	}

	if d.dataAccessed {
		return nil, ErrDataConsumed
	}

	d.dataAccessed = true

	return &dataReader{
		src:       d.r,
		remaining: int64(d.DataChunk.Size),
		padded:    d.DataChunk.Padded,
	}, nil
}

// ReadData reads the entire audio payload into memory. Like DataReader, it
// may only be invoked once per decoder.
func (d *Decoder) ReadData() ([]byte, error) {
	r, err := d.DataReader()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data payload: %w", err)
	}

	return data, nil
}

// WasDataAccessed returns positively if the payload accessor was invoked.
func (d *Decoder) WasDataAccessed() bool {
	if d == nil {
		return false
	}

	return d.dataAccessed
}

type dataReader struct {
	src       io.Reader
	remaining int64
	padded    bool
	padDone   bool
}

func (r *dataReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		r.consumePad()
		return 0, io.EOF
	}

	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}

	n, err := r.src.Read(p)
	r.remaining -= int64(n)

	if r.remaining == 0 {
		r.consumePad()
	}

	if err != nil && errors.Is(err, io.EOF) && r.remaining > 0 {
		return n, fmt.Errorf("%w: data payload short by %d bytes", ErrTruncated, r.remaining)
	}

	return n, err
}

// consumePad swallows the pad byte after an odd-sized payload. A missing pad
// at the very end of the source is tolerated; many writers omit the final one.
func (r *dataReader) consumePad() {
	if !r.padded || r.padDone {
		return
	}

	r.padDone = true

	var pad [1]byte

	_, _ = io.ReadFull(r.src, pad[:])
}
