package telemetry

import "errors"

var (
	// ErrTruncated reports a varint cut off by the end of the payload.
	ErrTruncated = errors.New("telemetry: truncated varint")

	// ErrOverlong reports a varint with more continuation bytes than a
	// 32-bit value can need.
	ErrOverlong = errors.New("telemetry: overlong varint")
)

// AppendUint appends v in base-128 varint form: seven value bits per byte,
// most significant group first, high bit marking continuation. A uint32
// takes at most five bytes.
func AppendUint(dst []byte, v uint32) []byte {
	started := false
	for shift := 28; shift > 0; shift -= 7 {
		g := byte(v>>uint(shift)) & 0x7F
		if started || g != 0 {
			dst = append(dst, g|0x80)
			started = true
		}
	}
	return append(dst, byte(v)&0x7F)
}

// DecodeUint decodes one varint from the front of *data, advancing the
// slice past the consumed bytes.
func DecodeUint(data *[]byte) (uint32, error) {
	var v uint32
	for i := 0; ; i++ {
		if i == 5 {
			return 0, ErrOverlong
		}
		if len(*data) == 0 {
			return 0, ErrTruncated
		}
		c := (*data)[0]
		*data = (*data)[1:]
		v = v<<7 | uint32(c&0x7F)
		if c&0x80 == 0 {
			return v, nil
		}
	}
}
