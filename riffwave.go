package riffwave

import "fmt"

// Format tags carried by the fmt chunk, as registered for WAVE files.
const (
	WavFormatPCM       uint16 = 0x0001
	WavFormatIEEEFloat uint16 = 0x0003
	WavFormatALaw      uint16 = 0x0006
	WavFormatMuLaw     uint16 = 0x0007
	// WavFormatExtensible forces the extensible fmt chunk layout, which
	// carries a sub-format GUID and a speaker channel mask.
	WavFormatExtensible uint16 = 0xFFFE
)

var (
	// CIDFact is the chunk ID for the fact chunk.
	CIDFact = [4]byte{'f', 'a', 'c', 't'}

	// some writers emit the data chunk id with an uppercase D.
	cidDataUpper = [4]byte{'D', 'a', 't', 'a'}
)

// FormatTagName returns a human-readable name for a fmt chunk format tag.
// Unrecognized tags are legal in valid files and stringify with their code.
func FormatTagName(tag uint16) string {
	switch tag {
	case WavFormatPCM:
		return "PCM"
	case WavFormatIEEEFloat:
		return "IEEE float"
	case WavFormatALaw:
		return "G.711 A-law"
	case WavFormatMuLaw:
		return "G.711 mu-law"
	case WavFormatExtensible:
		return "extensible"
	default:
		return fmt.Sprintf("unknown (%d)", tag)
	}
}

// UnknownChunk records a chunk the decoder does not interpret: its id and
// declared size. The body is skipped during traversal, never retained.
type UnknownChunk struct {
	ID   [4]byte
	Size uint32
}
