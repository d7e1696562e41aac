package riffwave

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	// ErrTruncated is returned when the source runs out of bytes before a
	// field or a declared chunk length is fully read.
	ErrTruncated = errors.New("truncated input")
	// ErrInvalidContainer is returned when the outer RIFF/WAVE envelope
	// identifiers are missing or wrong.
	ErrInvalidContainer = errors.New("invalid RIFF/WAVE container")
	// ErrMissingFmtChunk is returned when the first chunk after the envelope
	// is not the fmt chunk.
	ErrMissingFmtChunk = errors.New("fmt chunk not found")
	// ErrDuplicateFmtChunk is returned when a second fmt chunk is encountered.
	ErrDuplicateFmtChunk = errors.New("duplicate fmt chunk")
	// ErrInvalidFmtChunkSize is returned when the fmt chunk's declared length
	// matches no recognized layout.
	ErrInvalidFmtChunkSize = errors.New("invalid fmt chunk size")
	// ErrDuplicateFactChunk is returned when a second fact chunk is encountered.
	ErrDuplicateFactChunk = errors.New("duplicate fact chunk")
	// ErrMissingDataChunk is returned when the source is exhausted before a
	// data chunk is found.
	ErrMissingDataChunk = errors.New("data chunk not found")
	// ErrDataConsumed is returned when the data payload accessor is invoked
	// more than once. Payload bytes are streamed, not buffered, so they can
	// only be handed out a single time.
	ErrDataConsumed = errors.New("data chunk already consumed")
	// ErrDurationNilPointer is returned when calculating duration on a nil decoder.
	ErrDurationNilPointer = errors.New("can't calculate the duration of a nil pointer")

	errNilChunk     = errors.New("nil chunk pointer")
	errZeroByteRate = errors.New("fmt chunk declares a zero byte rate")
)

// Decoder reads the header chunks of a RIFF/WAVE stream.
// The source is read strictly forward; the decoder never seeks.
type Decoder struct {
	r      *countingReader
	parser *riff.Parser

	NumChans   uint16
	BitDepth   uint16
	SampleRate uint32

	AvgBytesPerSec uint32
	WavAudioFormat uint16

	// RIFFSize is the declared size of the outer RIFF chunk. It is recorded
	// but never trusted: traversal is driven by per-chunk lengths, since
	// real-world files frequently carry an inaccurate outer size.
	RIFFSize uint32

	FmtChunk  *FmtChunk
	FactChunk *FactChunk
	DataChunk *DataChunk
	// UnknownChunks lists unhandled chunk ids in encounter order.
	UnknownChunks []UnknownChunk

	err          error
	headersRead  bool
	dataAccessed bool
}

// NewDecoder creates a decoder for the passed wav reader.
// Note that the reader doesn't get rewinded as the container is processed.
func NewDecoder(r io.Reader) *Decoder {
	cr := &countingReader{r: r}

	return &Decoder{
		r:      cr,
		parser: riff.New(cr),
	}
}

// ReadInfo reads the underlying reader until all header chunks are parsed.
// This method is safe to call multiple times.
func (d *Decoder) ReadInfo() {
	d.err = d.readHeaders()
}

// Err returns the error encountered while parsing the headers, if any.
func (d *Decoder) Err() error {
	if d == nil {
		return nil
	}

	return d.err
}

// IsValidFile verifies that the file is valid/readable.
func (d *Decoder) IsValidFile() bool {
	if d == nil {
		return false
	}

	d.err = d.readHeaders()
	if d.err != nil {
		return false
	}

	if d.NumChans < 1 {
		return false
	}

	if d.SampleRate == 0 {
		return false
	}

	return true
}

// SampleBitDepth returns the bit depth encoding of each sample.
func (d *Decoder) SampleBitDepth() int32 {
	if d == nil {
		return 0
	}

	return int32(d.BitDepth)
}

// Format returns the audio format of the decoded content.
func (d *Decoder) Format() *audio.Format {
	if d == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
}

// FormatChunk returns a copy of the parsed fmt chunk, if available.
func (d *Decoder) FormatChunk() *FmtChunk {
	if d == nil || d.FmtChunk == nil {
		return nil
	}

	return d.FmtChunk.Clone()
}

// Duration returns the play time of the audio payload, derived from the data
// chunk length and the declared byte rate. The outer RIFF size is not used
// since it is frequently inaccurate.
func (d *Decoder) Duration() (time.Duration, error) {
	if d == nil {
		return 0, ErrDurationNilPointer
	}

	if err := d.readHeaders(); err != nil {
		return 0, err
	}

	if d.AvgBytesPerSec == 0 {
		return 0, errZeroByteRate
	}

	seconds := float64(d.DataChunk.Size) / float64(d.AvgBytesPerSec)

	return time.Duration(seconds * float64(time.Second)), nil
}

// String implements the Stringer interface.
func (d *Decoder) String() string {
	if d == nil || d.FmtChunk == nil || d.DataChunk == nil {
		return "riff/wave: headers not read"
	}

	out := fmt.Sprintf("%s: %d ch @ %d Hz, %d bits, %d data bytes",
		FormatTagName(d.WavAudioFormat), d.NumChans, d.SampleRate, d.BitDepth, d.DataChunk.Size)

	if d.FactChunk != nil {
		out += fmt.Sprintf(", %d samples", d.FactChunk.SampleLength)
	}

	for _, chunk := range d.UnknownChunks {
		out += fmt.Sprintf(", skipped %q", chunk.ID[:])
	}

	return out
}

// readHeaders is safe to call multiple times.
func (d *Decoder) readHeaders() error {
	if d == nil {
		return nil
	}

	if d.headersRead {
		return d.err
	}

	d.headersRead = true
	d.err = d.parseHeaders()

	return d.err
}

// parseHeaders validates the RIFF/WAVE envelope and walks the chunk sequence
// until the data chunk header has been read. The data payload itself is left
// unread; DataReader consumes it from the recorded offset.
func (d *Decoder) parseHeaders() error {
	id, size, err := d.parser.IDnSize()
	if err != nil {
		return readErr(err, "RIFF header")
	}

	if id != riff.RiffID {
		return fmt.Errorf("%w: expected RIFF, got %q", ErrInvalidContainer, id[:])
	}

	d.parser.ID = id
	d.parser.Size = size
	d.RIFFSize = size

	if err := binary.Read(d.r, binary.BigEndian, &d.parser.Format); err != nil {
		return readErr(err, "form type")
	}

	if d.parser.Format != riff.WavFormatID {
		return fmt.Errorf("%w: expected WAVE, got %q", ErrInvalidContainer, d.parser.Format[:])
	}

	// the fmt chunk must come first; anything else means the format is
	// undefined for every chunk that follows.
	id, size, err = d.parser.IDnSize()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrMissingFmtChunk
		}

		return readErr(err, "chunk header")
	}

	if id != riff.FmtID {
		return fmt.Errorf("%w: first chunk is %q", ErrMissingFmtChunk, id[:])
	}

	if err := d.parseFmtChunk(size); err != nil {
		return err
	}

	for {
		id, size, err = d.parser.IDnSize()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrMissingDataChunk
			}

			return readErr(err, "chunk header")
		}

		switch {
		case id == riff.FmtID:
			return ErrDuplicateFmtChunk
		case id == CIDFact:
			if d.FactChunk != nil {
				return ErrDuplicateFactChunk
			}

			if err := d.parseFactChunk(size); err != nil {
				return err
			}
		case id == riff.DataFormatID || id == cidDataUpper:
			d.DataChunk = &DataChunk{
				Size:   size,
				Offset: d.r.pos,
				Padded: size%2 == 1,
			}

			return nil
		default:
			d.UnknownChunks = append(d.UnknownChunks, UnknownChunk{ID: id, Size: size})

			if err := d.skipChunk(size); err != nil {
				return err
			}
		}
	}
}

// chunkFor wraps the next size bytes of the source as a riff chunk so fields
// can be decoded with ReadLE.
func (d *Decoder) chunkFor(id [4]byte, size uint32) *riff.Chunk {
	return &riff.Chunk{
		ID:   id,
		Size: int(size),
		R:    io.LimitReader(d.r, int64(size)),
	}
}

// skipChunk discards a chunk body plus its pad byte when the declared size is
// odd. All RIFF chunks are word aligned; the pad byte is not counted in the
// declared size, and skipping it keeps every following chunk header in sync.
func (d *Decoder) skipChunk(size uint32) error {
	n := int64(size)
	if size%2 == 1 {
		n++
	}

	if _, err := io.CopyN(io.Discard, d.r, n); err != nil {
		return readErr(err, "chunk body")
	}

	return nil
}

// skipPad discards the alignment byte after an odd-sized chunk body.
func (d *Decoder) skipPad(size uint32) error {
	if size%2 == 0 {
		return nil
	}

	var pad [1]byte
	if _, err := io.ReadFull(d.r, pad[:]); err != nil {
		return readErr(err, "chunk pad byte")
	}

	return nil
}

// readErr classifies a failed read: source exhaustion becomes ErrTruncated,
// anything else is wrapped as a plain read failure.
func readErr(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}

	return fmt.Errorf("failed to read %s: %w", what, err)
}

// countingReader tracks the absolute read position so the payload offset can
// be recorded without seeking.
type countingReader struct {
	r   io.Reader
	pos int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.pos += int64(n)

	return n, err
}
