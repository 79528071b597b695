// packet.go implements TOC byte parsing and frame-packing-code extraction
// per RFC 6716 Section 3. The frame-packing split (codes 1-3) is authored
// directly from spec.md Sections 3, 4.4, and 8 (requirements R1-R7); the
// teacher's own packet.go stops at ParseTOC and never splits a multi-frame
// payload, so there is no teacher code to port for that part.

package opus

// Mode is the Opus coding mode selected by a packet's TOC configuration.
type Mode uint8

const (
	ModeSILK   Mode = iota // SILK-only (configs 0-11)
	ModeHybrid             // Hybrid SILK+CELT (configs 12-15)
	ModeCELT               // CELT-only (configs 16-31)
)

// Bandwidth is the audio bandwidth tier selected by a packet's TOC
// configuration.
type Bandwidth uint8

const (
	BandwidthNarrowband    Bandwidth = iota // NB, 4 kHz audio / 8 kHz internal rate
	BandwidthMediumband                     // MB, 6 kHz audio / 12 kHz internal rate
	BandwidthWideband                       // WB, 8 kHz audio / 16 kHz internal rate
	BandwidthSuperwideband                  // SWB, 12 kHz audio / 24 kHz internal rate
	BandwidthFullband                       // FB, 20 kHz audio / 48 kHz internal rate
)

// TOC holds the decoded fields of an Opus packet's table-of-contents byte.
type TOC struct {
	Config           uint8
	Mode             Mode
	Bandwidth        Bandwidth
	FrameSize        int // samples at 48kHz
	DurationTenthsMs int // frame duration in tenths of a millisecond
	Stereo           bool
	FrameCode        uint8 // 0-3
}

type configEntry struct {
	Mode      Mode
	Bandwidth Bandwidth
	FrameSize int // samples at 48kHz
}

// configTable maps the 32 TOC configurations to (mode, bandwidth, frame
// size), per RFC 6716 Section 3.1 Table 2.
var configTable = [32]configEntry{
	{ModeSILK, BandwidthNarrowband, 480},  // 0: 10ms
	{ModeSILK, BandwidthNarrowband, 960},  // 1: 20ms
	{ModeSILK, BandwidthNarrowband, 1920}, // 2: 40ms
	{ModeSILK, BandwidthNarrowband, 2880}, // 3: 60ms
	{ModeSILK, BandwidthMediumband, 480},  // 4
	{ModeSILK, BandwidthMediumband, 960},  // 5
	{ModeSILK, BandwidthMediumband, 1920}, // 6
	{ModeSILK, BandwidthMediumband, 2880}, // 7
	{ModeSILK, BandwidthWideband, 480},    // 8
	{ModeSILK, BandwidthWideband, 960},    // 9
	{ModeSILK, BandwidthWideband, 1920},   // 10
	{ModeSILK, BandwidthWideband, 2880},   // 11
	{ModeHybrid, BandwidthSuperwideband, 480}, // 12: 10ms
	{ModeHybrid, BandwidthSuperwideband, 960}, // 13: 20ms
	{ModeHybrid, BandwidthFullband, 480},      // 14
	{ModeHybrid, BandwidthFullband, 960},      // 15
	{ModeCELT, BandwidthNarrowband, 120},      // 16: 2.5ms
	{ModeCELT, BandwidthNarrowband, 240},      // 17: 5ms
	{ModeCELT, BandwidthNarrowband, 480},      // 18: 10ms
	{ModeCELT, BandwidthNarrowband, 960},      // 19: 20ms
	{ModeCELT, BandwidthWideband, 120},        // 20
	{ModeCELT, BandwidthWideband, 240},        // 21
	{ModeCELT, BandwidthWideband, 480},        // 22
	{ModeCELT, BandwidthWideband, 960},        // 23
	{ModeCELT, BandwidthSuperwideband, 120},   // 24
	{ModeCELT, BandwidthSuperwideband, 240},   // 25
	{ModeCELT, BandwidthSuperwideband, 480},   // 26
	{ModeCELT, BandwidthSuperwideband, 960},   // 27
	{ModeCELT, BandwidthFullband, 120},        // 28
	{ModeCELT, BandwidthFullband, 240},        // 29
	{ModeCELT, BandwidthFullband, 480},        // 30
	{ModeCELT, BandwidthFullband, 960},        // 31
}

// maxFrameBytes is R2: no single frame may exceed 1275 bytes.
const maxFrameBytes = 1275

// maxPacketDurationTenthsMs is R5: total coded duration must not exceed
// 120ms, checked in tenths of a millisecond to preserve 2.5ms precision.
const maxPacketDurationTenthsMs = 1200

// ParseTOC parses a TOC byte into its constituent fields.
func ParseTOC(b byte) TOC {
	config := b >> 3
	stereo := (b & 0x04) != 0
	frameCode := b & 0x03

	entry := configTable[config]
	return TOC{
		Config:           config,
		Mode:             entry.Mode,
		Bandwidth:        entry.Bandwidth,
		FrameSize:        entry.FrameSize,
		DurationTenthsMs: entry.FrameSize * 10 / 48,
		Stereo:           stereo,
		FrameCode:        frameCode,
	}
}

// ParsePacket splits a packet's payload (the bytes after the TOC) into its
// constituent frames, per RFC 6716 Section 3.2 and spec.md requirements
// R1-R7. toc must already have been parsed from byte 0 of the same packet.
func ParsePacket(toc TOC, payload []byte) ([][]byte, error) {
	switch toc.FrameCode {
	case 0:
		return parseCode0(payload)
	case 1:
		return parseCode1(payload)
	case 2:
		return parseCode2(payload)
	default:
		return parseCode3(toc, payload)
	}
}

func parseCode0(payload []byte) ([][]byte, error) {
	if len(payload) > maxFrameBytes {
		return nil, ErrFrameTooLarge
	}
	return [][]byte{payload}, nil
}

// parseCode1 implements R3: two equal-length frames, payload length even.
func parseCode1(payload []byte) ([][]byte, error) {
	if len(payload)%2 != 0 {
		return nil, ErrInvalidFrameCount
	}
	half := len(payload) / 2
	if half > maxFrameBytes {
		return nil, ErrFrameTooLarge
	}
	return [][]byte{payload[:half], payload[half:]}, nil
}

// parseCode2 implements R4: two variable-length frames, first frame's
// length encoded explicitly at the start of the payload.
func parseCode2(payload []byte) ([][]byte, error) {
	n1, hdrLen, err := readFrameLength(payload)
	if err != nil {
		return nil, err
	}
	rest := payload[hdrLen:]
	if n1 > len(rest) || n1 > maxFrameBytes {
		return nil, ErrInvalidPacket
	}
	frame1 := rest[:n1]
	frame2 := rest[n1:]
	if len(frame2) > maxFrameBytes {
		return nil, ErrFrameTooLarge
	}
	return [][]byte{frame1, frame2}, nil
}

// parseCode3 implements the frame-count byte (VBR flag, padding flag,
// 6-bit count M), R5 (duration ceiling), R6 (CBR divisibility), and R7
// (VBR last-frame validity).
func parseCode3(toc TOC, payload []byte) ([][]byte, error) {
	if len(payload) < 1 {
		return nil, ErrInvalidPacket
	}
	header := payload[0]
	vbr := header&0x80 != 0
	hasPadding := header&0x40 != 0
	m := int(header & 0x3F)
	rest := payload[1:]

	if m*toc.DurationTenthsMs > maxPacketDurationTenthsMs {
		return nil, ErrDurationExceeded
	}
	if m < 1 || m > 48 {
		return nil, ErrInvalidFrameCount
	}

	paddingBytes := 0
	if hasPadding {
		n, consumed, err := readPaddingLength(rest)
		if err != nil {
			return nil, err
		}
		paddingBytes = n
		rest = rest[consumed:]
	}

	if paddingBytes > len(rest) {
		return nil, ErrInvalidPacket
	}
	frameData := rest[:len(rest)-paddingBytes]

	if vbr {
		return parseCode3VBR(m, frameData)
	}
	return parseCode3CBR(m, frameData)
}

// parseCode3CBR implements R6: equal-length frames, remainder divisible by M.
func parseCode3CBR(m int, frameData []byte) ([][]byte, error) {
	if len(frameData)%m != 0 {
		return nil, ErrInvalidPacket
	}
	frameLen := len(frameData) / m
	if frameLen > maxFrameBytes {
		return nil, ErrFrameTooLarge
	}
	frames := make([][]byte, m)
	for i := 0; i < m; i++ {
		frames[i] = frameData[i*frameLen : (i+1)*frameLen]
	}
	return frames, nil
}

// parseCode3VBR implements R7: the first M-1 frames carry explicit
// lengths, all stored ahead of the frame data; the last frame is whatever
// remains.
func parseCode3VBR(m int, frameData []byte) ([][]byte, error) {
	lengths := make([]int, m-1)
	cursor := frameData
	for i := 0; i < m-1; i++ {
		n, consumed, err := readFrameLength(cursor)
		if err != nil {
			return nil, err
		}
		if n > maxFrameBytes {
			return nil, ErrInvalidPacket
		}
		lengths[i] = n
		cursor = cursor[consumed:]
	}
	frames := make([][]byte, 0, m)
	for _, n := range lengths {
		if n > len(cursor) {
			return nil, ErrInvalidPacket
		}
		frames = append(frames, cursor[:n])
		cursor = cursor[n:]
	}
	if len(cursor) > maxFrameBytes {
		return nil, ErrFrameTooLarge
	}
	frames = append(frames, cursor)
	return frames, nil
}

// readFrameLength decodes a frame length per RFC 6716 Section 3.2.1:
// 0 is DTX (a zero-length frame), 1-251 encodes directly in one byte,
// 252-255 is the first byte of a two-byte form (max encodable 1275).
func readFrameLength(b []byte) (length, consumed int, err error) {
	if len(b) < 1 {
		return 0, 0, ErrInvalidPacket
	}
	first := int(b[0])
	if first < 252 {
		return first, 1, nil
	}
	if len(b) < 2 {
		return 0, 0, ErrInvalidPacket
	}
	length = first + int(b[1])*4
	return length, 2, nil
}

// readPaddingLength decodes the padding-length bytes for code 3: each byte
// 255 adds 254 and continues; a final byte < 255 adds its value and stops.
func readPaddingLength(b []byte) (length, consumed int, err error) {
	for {
		if consumed >= len(b) {
			return 0, 0, ErrInvalidPacket
		}
		v := int(b[consumed])
		consumed++
		length += v
		if v < 255 {
			return length, consumed, nil
		}
		length -= 1 // a 255 byte contributes 254, not 255
	}
}
