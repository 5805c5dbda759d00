// Package telemetry carries timer tick reports over a byte stream.
//
// A board polling a hardware timer emits one small frame per observed
// expiration; the host resynchronizes on the sync byte and verifies a
// CRC16 per frame, so line noise costs individual reports rather than the
// whole stream.
//
// Frame layout:
//
//	0x7E  len  seq  payload[len]  crc_hi  crc_lo
//
// len counts payload bytes only. The CRC covers len, seq and the payload.
// The payload is two varints: the live counter snapshot and the target
// frequency the timer was configured for.
package telemetry

import "bytes"

const (
	syncByte = 0x7E

	// maxPayload keeps frames small enough for an MCU scratch buffer.
	maxPayload = 16

	headerLen  = 3 // sync + len + seq
	trailerLen = 2 // crc16
)

// TickReport is one timer expiration observation.
type TickReport struct {
	// Seq increments per report modulo 256; the receiver detects dropped
	// frames from gaps.
	Seq uint8

	// Counter is the live counter register at report time.
	Counter uint32

	// TargetHz is the frequency the timer was configured for.
	TargetHz uint32
}

// Encode serializes the report as one frame.
func (r TickReport) Encode() []byte {
	payload := AppendUint(nil, r.Counter)
	payload = AppendUint(payload, r.TargetHz)

	frame := make([]byte, 0, headerLen+len(payload)+trailerLen)
	frame = append(frame, syncByte, byte(len(payload)), r.Seq)
	frame = append(frame, payload...)

	crc := CRC16(frame[1:])
	return append(frame, byte(crc>>8), byte(crc))
}

// Decoder reassembles TickReports from an arbitrarily chunked byte stream.
// Feed bytes as they arrive, then drain with Next.
type Decoder struct {
	buf []byte

	// CRCErrors counts frames dropped for a checksum mismatch.
	CRCErrors uint32

	// Malformed counts frames whose checksum passed but whose payload did
	// not parse.
	Malformed uint32
}

// Feed appends received bytes to the reassembly buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next extracts the next complete, valid report. It returns ok=false when
// the buffer holds no complete frame; feed more bytes and try again.
// Garbage between frames and frames with bad checksums are skipped.
func (d *Decoder) Next() (TickReport, bool) {
	for {
		start := bytes.IndexByte(d.buf, syncByte)
		if start < 0 {
			d.buf = d.buf[:0]
			return TickReport{}, false
		}
		d.buf = d.buf[start:]

		if len(d.buf) < headerLen {
			return TickReport{}, false
		}
		n := int(d.buf[1])
		if n > maxPayload {
			// Not a real header; resync one byte on.
			d.buf = d.buf[1:]
			continue
		}
		total := headerLen + n + trailerLen
		if len(d.buf) < total {
			return TickReport{}, false
		}

		frame := d.buf[:total]
		want := uint16(frame[total-2])<<8 | uint16(frame[total-1])
		if CRC16(frame[1:total-2]) != want {
			d.CRCErrors++
			d.buf = d.buf[1:]
			continue
		}

		report := TickReport{Seq: frame[2]}
		payload := frame[headerLen : headerLen+n]
		counter, err1 := DecodeUint(&payload)
		target, err2 := DecodeUint(&payload)
		d.buf = d.buf[total:]
		if err1 != nil || err2 != nil {
			d.Malformed++
			continue
		}
		report.Counter = counter
		report.TargetHz = target
		return report, true
	}
}
