package riffwave

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type testChunk struct {
	id      string
	payload []byte
}

// makeWav assembles an in-memory RIFF/WAVE file from the passed chunks and
// backfills the outer size field.
func makeWav(t *testing.T, chunks ...testChunk) []byte {
	t.Helper()

	var b bytes.Buffer
	b.WriteString("RIFF")

	if err := binary.Write(&b, binary.LittleEndian, uint32(0)); err != nil {
		t.Fatalf("write riff size placeholder: %v", err)
	}

	b.WriteString("WAVE")

	for _, ch := range chunks {
		writeTestChunk(t, &b, ch.id, ch.payload)
	}

	out := b.Bytes()
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))

	return out
}

func writeTestChunk(t *testing.T, b *bytes.Buffer, id string, payload []byte) {
	t.Helper()

	if len(id) != 4 {
		t.Fatalf("chunk id must be 4 bytes, got %q", id)
	}

	b.WriteString(id)

	if err := binary.Write(b, binary.LittleEndian, uint32(len(payload))); err != nil {
		t.Fatalf("write chunk size for %q: %v", id, err)
	}

	if _, err := b.Write(payload); err != nil {
		t.Fatalf("write chunk payload for %q: %v", id, err)
	}

	if len(payload)%2 == 1 {
		if err := b.WriteByte(0); err != nil {
			t.Fatalf("write chunk pad for %q: %v", id, err)
		}
	}
}

func makeFmtPayload(t *testing.T, tag, numChans uint16, sampleRate, byteRate uint32, blockAlign, bits uint16) []byte {
	t.Helper()

	out := make([]byte, 16)
	binary.LittleEndian.PutUint16(out[0:2], tag)
	binary.LittleEndian.PutUint16(out[2:4], numChans)
	binary.LittleEndian.PutUint32(out[4:8], sampleRate)
	binary.LittleEndian.PutUint32(out[8:12], byteRate)
	binary.LittleEndian.PutUint16(out[12:14], blockAlign)
	binary.LittleEndian.PutUint16(out[14:16], bits)

	return out
}

// defaultFmtPayload is 16-bit mono PCM at 8 kHz.
func defaultFmtPayload(t *testing.T) []byte {
	t.Helper()

	return makeFmtPayload(t, WavFormatPCM, 1, 8000, 16000, 2, 16)
}

// makeExtensiblePayload builds an extensible fmt body: the 16-byte prefix, a
// u16 extension size and an extension of 22 bytes plus the passed trailing
// opaque bytes.
func makeExtensiblePayload(t *testing.T, subFormatTag uint16, channelMask uint32, validBits uint16, trailing []byte) []byte {
	t.Helper()

	ext := make([]byte, 22+len(trailing))
	binary.LittleEndian.PutUint16(ext[0:2], validBits)
	binary.LittleEndian.PutUint32(ext[2:6], channelMask)
	copy(ext[6:22], subFormatGUID(subFormatTag))
	copy(ext[22:], trailing)

	prefix := makeFmtPayload(t, WavFormatExtensible, 2, 48000, 288000, 6, 24)
	out := append([]byte(nil), prefix...)
	out = append(out, byte(len(ext)), byte(len(ext)>>8))
	out = append(out, ext...)

	return out
}

// subFormatGUID returns the KSDATAFORMAT GUID for a format tag.
func subFormatGUID(tag uint16) []byte {
	guid := []byte{
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x10, 0x00,
		0x80, 0x00, 0x00, 0xAA,
		0x00, 0x38, 0x9B, 0x71,
	}
	binary.LittleEndian.PutUint16(guid[0:2], tag)

	return guid
}
