package telemetry

import "testing"

func TestVarintRoundTrip(t *testing.T) {
	testCases := []uint32{
		0,
		1,
		127,
		128,
		255,
		16383,
		16384,
		65535,
		8_000_000,
		71_999_999,
		0xFFFFFFFF,
	}

	for _, expected := range testCases {
		encoded := AppendUint(nil, expected)

		data := encoded
		decoded, err := DecodeUint(&data)
		if err != nil {
			t.Errorf("failed to decode varint for %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("varint mismatch: expected %d, got %d (encoded as %v)", expected, decoded, encoded)
		}
		if len(data) != 0 {
			t.Errorf("decode left %d bytes for value %d", len(data), expected)
		}
	}
}

func TestVarintTruncated(t *testing.T) {
	encoded := AppendUint(nil, 1_000_000)
	short := encoded[:len(encoded)-1]
	if _, err := DecodeUint(&short); err != ErrTruncated {
		t.Errorf("truncated decode = %v, want ErrTruncated", err)
	}
}

func TestVarintOverlong(t *testing.T) {
	data := []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	if _, err := DecodeUint(&data); err != ErrOverlong {
		t.Errorf("overlong decode = %v, want ErrOverlong", err)
	}
}

func TestCRC16Consistency(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if CRC16(data) != CRC16(data) {
		t.Error("CRC16 not deterministic")
	}
	if CRC16([]byte{}) != 0xFFFF {
		t.Errorf("CRC16 of empty input = %04X, want FFFF", CRC16([]byte{}))
	}
	if CRC16([]byte{0x01, 0x02, 0x03}) == CRC16([]byte{0x01, 0x02, 0x04}) {
		t.Error("CRC16 collision on adjacent inputs")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	reports := []TickReport{
		{Seq: 0, Counter: 0, TargetHz: 1},
		{Seq: 1, Counter: 42, TargetHz: 1000},
		{Seq: 255, Counter: 71_999_999, TargetHz: 100},
	}

	var d Decoder
	for _, want := range reports {
		d.Feed(want.Encode())
		got, ok := d.Next()
		if !ok {
			t.Fatalf("no report decoded for %+v", want)
		}
		if got != want {
			t.Errorf("decoded %+v, want %+v", got, want)
		}
	}
	if _, ok := d.Next(); ok {
		t.Error("decoder produced a report from an empty buffer")
	}
}

func TestDecoderChunkedFeed(t *testing.T) {
	want := TickReport{Seq: 7, Counter: 12345, TargetHz: 250}
	frame := want.Encode()

	var d Decoder
	for i := range frame {
		d.Feed(frame[i : i+1])
		got, ok := d.Next()
		if i < len(frame)-1 {
			if ok {
				t.Fatalf("report surfaced after %d of %d bytes", i+1, len(frame))
			}
			continue
		}
		if !ok {
			t.Fatal("no report after the full frame")
		}
		if got != want {
			t.Errorf("decoded %+v, want %+v", got, want)
		}
	}
}

func TestDecoderSkipsGarbageAndBadCRC(t *testing.T) {
	good := TickReport{Seq: 3, Counter: 8000, TargetHz: 1000}

	corrupt := TickReport{Seq: 2, Counter: 5, TargetHz: 5}.Encode()
	corrupt[len(corrupt)-1] ^= 0xFF

	var d Decoder
	d.Feed([]byte{0x00, 0x13, 0x37}) // line noise
	d.Feed(corrupt)
	d.Feed([]byte{0x7E, 0xFF}) // sync byte with an absurd length
	d.Feed(good.Encode())

	got, ok := d.Next()
	if !ok {
		t.Fatal("decoder did not recover a valid frame")
	}
	if got != good {
		t.Errorf("decoded %+v, want %+v", got, good)
	}
	if d.CRCErrors == 0 {
		t.Error("corrupted frame not counted as CRC error")
	}
}
