// Package opus implements an Opus audio decoder in pure Go, following the
// structure of IETF RFC 6716. Several RFC tables (CELT band allocation,
// SILK LSF codebooks, SILK pulse-count probabilities, LTP filter taps) are
// synthesized stand-ins, so output is not bit-exact with libopus.
//
// Opus is a hybrid codec combining SILK (linear-prediction speech coding)
// and CELT (MDCT-domain transform coding) with seamless mode switching.
// This package decodes Opus packets into interleaved 48 kHz PCM, mono or
// stereo. It requires no cgo dependencies.
//
// # Opus Modes
//
// Opus operates in three modes, selected per packet by the TOC byte:
//   - SILK-only: speech-optimized, narrowband through wideband (4-8 kHz)
//   - CELT-only: transform-domain, wideband through fullband (8-20 kHz)
//   - Hybrid: SILK for 0-8 kHz plus CELT for 8 kHz+, sharing one entropy
//     coder
//
// # Packet structure
//
// Every packet starts with a TOC (table-of-contents) byte:
//   - Bits 7-3: configuration (0-31), selecting mode/bandwidth/duration
//   - Bit 2: stereo flag
//   - Bits 1-0: frame-count code (0-3)
//
// Use ParseTOC to extract these fields and ParsePacket to split a packet
// into its constituent frames.
//
// This package covers the decode core only: the range decoder, the SILK
// and CELT decoders, hybrid orchestration, and packet framing. Container
// demuxing (Ogg, WebM), the encoder, and general-purpose resampling are
// out of scope; see Decoder for the supported surface.
package opus
