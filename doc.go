// Package ebustl decodes ETSI EN 300 706 teletext packet streams into
// EBU Tech 3264-E (".stl") subtitle files, and parses ".stl" files back
// into structured, styled captions.
//
// The package is organized leaf-first, mirroring the two data flows it
// supports:
//
//	extraction: raw teletext packets -> DecodePackets -> WriteSTL
//	reading:    .stl bytes -> ReadSTL -> Captions (text, style, layout)
//
// Every exported entry point operates on a byte buffer handed to it by
// the caller; nothing here spawns goroutines, retains process-wide
// mutable state, or reaches out to an external process. Demuxing a
// teletext elementary stream out of a video container is a caller
// concern (see cmd/ts2stl for one way to do it with go-astits).
package ebustl
