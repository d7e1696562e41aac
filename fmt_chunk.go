package riffwave

import (
	"encoding/binary"
	"fmt"

	"github.com/go-audio/riff"
)

const (
	// fmtChunkMinSize is the canonical fmt chunk layout: six fixed-width
	// fields and nothing else.
	fmtChunkMinSize = 16
	// fmtExtensibleMinExtra is the smallest extension block the extensible
	// layout allows: valid bits (2) + channel mask (4) + sub-format GUID (16).
	fmtExtensibleMinExtra = 22
)

// FmtChunk stores the parsed WAV fmt chunk, including extensible metadata.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	// ExtraData holds the raw extension block for any layout that declares
	// one, verbatim.
	ExtraData  []byte
	Extensible *FmtExtensible
}

// FmtExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FmtExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
	// ExtraData holds extension bytes past the mandatory 22, verbatim.
	ExtraData []byte
}

func (f *FmtChunk) Clone() *FmtChunk {
	if f == nil {
		return nil
	}

	out := *f

	out.ExtraData = append([]byte(nil), f.ExtraData...)
	if f.Extensible != nil {
		ext := *f.Extensible
		ext.ExtraData = append([]byte(nil), f.Extensible.ExtraData...)
		out.Extensible = &ext
	}

	return &out
}

// EffectiveFormatTag resolves the real format tag: for the extensible layout
// the sub-format GUID carries it, otherwise the chunk field does.
func (f *FmtChunk) EffectiveFormatTag() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == WavFormatExtensible && f.Extensible != nil {
		return binary.LittleEndian.Uint16(f.Extensible.SubFormat[:2])
	}

	return f.FormatTag
}

func (d *Decoder) parseFmtChunk(size uint32) error {
	fmtChunk, err := decodeFmtChunk(d.chunkFor(riff.FmtID, size))
	if err != nil {
		return err
	}

	d.FmtChunk = fmtChunk
	d.NumChans = fmtChunk.NumChannels
	d.BitDepth = fmtChunk.BitsPerSample
	d.SampleRate = fmtChunk.SampleRate
	d.AvgBytesPerSec = fmtChunk.AvgBytesPerSec
	d.WavAudioFormat = fmtChunk.EffectiveFormatTag()

	return d.skipPad(size)
}

// decodeFmtChunk reads a fmt chunk body. Three layouts are recognized by
// declared size: the 16-byte canonical form, 16 bytes plus a u16 extension
// size followed by exactly that many extension bytes, and the extensible form
// where the format tag is 0xFFFE and the extension block is at least 22
// bytes. Anything else fails with ErrInvalidFmtChunkSize. Unrecognized
// format tags are not an error; plenty of valid files use float or
// compressed tags.
func decodeFmtChunk(chunk *riff.Chunk) (*FmtChunk, error) {
	if chunk == nil {
		return nil, errNilChunk
	}

	if chunk.Size < fmtChunkMinSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidFmtChunkSize, chunk.Size)
	}

	fmtChunk := &FmtChunk{}

	if err := chunk.ReadLE(&fmtChunk.FormatTag); err != nil {
		return nil, readErr(err, "wav format")
	}

	if err := chunk.ReadLE(&fmtChunk.NumChannels); err != nil {
		return nil, readErr(err, "channels")
	}

	if err := chunk.ReadLE(&fmtChunk.SampleRate); err != nil {
		return nil, readErr(err, "sample rate")
	}

	if err := chunk.ReadLE(&fmtChunk.AvgBytesPerSec); err != nil {
		return nil, readErr(err, "avg bytes/sec")
	}

	if err := chunk.ReadLE(&fmtChunk.BlockAlign); err != nil {
		return nil, readErr(err, "block align")
	}

	if err := chunk.ReadLE(&fmtChunk.BitsPerSample); err != nil {
		return nil, readErr(err, "bit depth")
	}

	if chunk.Size == fmtChunkMinSize {
		if fmtChunk.FormatTag == WavFormatExtensible {
			return nil, fmt.Errorf("%w: extensible format with no extension block", ErrInvalidFmtChunkSize)
		}

		return fmtChunk, nil
	}

	if chunk.Size < fmtChunkMinSize+2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidFmtChunkSize, chunk.Size)
	}

	var extraSize uint16

	if err := chunk.ReadLE(&extraSize); err != nil {
		return nil, readErr(err, "fmt extension size")
	}

	if chunk.Size != fmtChunkMinSize+2+int(extraSize) {
		return nil, fmt.Errorf("%w: %d bytes with a %d byte extension declared",
			ErrInvalidFmtChunkSize, chunk.Size, extraSize)
	}

	fmtChunk.ExtraData = make([]byte, extraSize)
	if extraSize > 0 {
		if err := chunk.ReadLE(&fmtChunk.ExtraData); err != nil {
			return nil, readErr(err, "fmt extension data")
		}
	}

	if fmtChunk.FormatTag != WavFormatExtensible {
		return fmtChunk, nil
	}

	if extraSize < fmtExtensibleMinExtra {
		return nil, fmt.Errorf("%w: extensible extension is %d bytes, need at least %d",
			ErrInvalidFmtChunkSize, extraSize, fmtExtensibleMinExtra)
	}

	ext := &FmtExtensible{}
	ext.ValidBitsPerSample = binary.LittleEndian.Uint16(fmtChunk.ExtraData[0:2])
	ext.ChannelMask = binary.LittleEndian.Uint32(fmtChunk.ExtraData[2:6])
	copy(ext.SubFormat[:], fmtChunk.ExtraData[6:fmtExtensibleMinExtra])

	if len(fmtChunk.ExtraData) > fmtExtensibleMinExtra {
		ext.ExtraData = append(ext.ExtraData, fmtChunk.ExtraData[fmtExtensibleMinExtra:]...)
	}

	fmtChunk.Extensible = ext

	return fmtChunk, nil
}
