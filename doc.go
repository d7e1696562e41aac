// Package riffwave decodes the header of RIFF/WAVE audio files.
//
// The decoder walks the chunk sequence of an already-open, forward-only
// byte source: it validates the RIFF/WAVE envelope, parses the fmt chunk
// (canonical or extensible layout), the optional fact chunk, records the
// ids of chunks it does not interpret, and stops at the data chunk. The
// raw audio payload is exposed through a lazy, single-use reader; sample
// values are never interpreted.
//
// Malformed structure is always a fatal, sentinel-wrapped error that can
// be classified with errors.Is. Chunks the decoder does not special-case
// never cause a failure; their ids are inventoried in encounter order and
// their bodies skipped.
package riffwave
