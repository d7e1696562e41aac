package riffwave

// FactChunk stores the parsed fact chunk, which carries the sample count for
// compressed and extensible formats.
type FactChunk struct {
	SampleLength uint32
	// ExtraData holds any declared bytes past the sample count, verbatim.
	ExtraData []byte
}

func (d *Decoder) parseFactChunk(size uint32) error {
	chunk := d.chunkFor(CIDFact, size)

	fact := &FactChunk{}

	if err := chunk.ReadLE(&fact.SampleLength); err != nil {
		return readErr(err, "fact sample length")
	}

	if size > 4 {
		fact.ExtraData = make([]byte, size-4)
		if err := chunk.ReadLE(&fact.ExtraData); err != nil {
			return readErr(err, "fact extra data")
		}
	}

	d.FactChunk = fact

	return d.skipPad(size)
}
