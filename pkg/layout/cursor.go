package layout

import (
	"unicode/utf8"

	"blocksd/pkg/models"
)

// reader walks a raw account buffer left to right. Every read checks the
// remaining length before consuming bytes so decoding is total: a truncated
// or hostile buffer produces an error, never a panic or an over-read.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) readByte(kind Kind, field string) (byte, error) {
	if r.remaining() < 1 {
		return 0, errTruncated(kind, field, r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// readBool accepts only 0 and 1. The program writes borsh bools; any other
// byte means the buffer is not this layout, which makes the flag fields
// discriminating during classification.
func (r *reader) readBool(kind Kind, field string) (bool, error) {
	b, err := r.readByte(kind, field)
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, errInvalidBool(kind, field, b)
	}
	return b == 1, nil
}

func (r *reader) readUint32(kind Kind, field string) (uint32, error) {
	if r.remaining() < 4 {
		return 0, errTruncated(kind, field, r.pos)
	}
	b := r.buf[r.pos:]
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	r.pos += 4
	return v, nil
}

func (r *reader) readUint64(kind Kind, field string) (uint64, error) {
	if r.remaining() < 8 {
		return 0, errTruncated(kind, field, r.pos)
	}
	b := r.buf[r.pos:]
	v := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	r.pos += 8
	return v, nil
}

func (r *reader) readInt64(kind Kind, field string) (int64, error) {
	v, err := r.readUint64(kind, field)
	return int64(v), err
}

func (r *reader) readKey(kind Kind, field string) (models.Key, error) {
	var k models.Key
	if r.remaining() < models.KeySize {
		return k, errTruncated(kind, field, r.pos)
	}
	copy(k[:], r.buf[r.pos:r.pos+models.KeySize])
	r.pos += models.KeySize
	return k, nil
}

// readString reads a u32-length-prefixed UTF-8 string. The declared length
// is checked against max before any slicing, so an over-length declaration
// fails even when the buffer happens to hold enough bytes.
func (r *reader) readString(kind Kind, field string, max int) (string, error) {
	n, err := r.readUint32(kind, field)
	if err != nil {
		return "", err
	}
	if int(n) > max {
		return "", errOverLength(kind, field, int(n), max)
	}
	if r.remaining() < int(n) {
		return "", errTruncated(kind, field, r.pos)
	}
	raw := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	if !utf8.Valid(raw) {
		return "", errInvalidUTF8(kind, field)
	}
	return string(raw), nil
}

// readStringList reads a u32-count-prefixed list of length-prefixed strings.
func (r *reader) readStringList(kind Kind, field string, maxItems, itemMax int) ([]string, error) {
	n, err := r.readUint32(kind, field)
	if err != nil {
		return nil, err
	}
	if int(n) > maxItems {
		return nil, errOverLength(kind, field, int(n), maxItems)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		s, err := r.readString(kind, field, itemMax)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// writer builds an account buffer field by field, mirroring reader.
type writer struct {
	buf []byte
}

func (w *writer) putByte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *writer) putBool(b bool) {
	if b {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *writer) putUint32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (w *writer) putUint64(v uint64) {
	w.buf = append(w.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func (w *writer) putInt64(v int64) {
	w.putUint64(uint64(v))
}

func (w *writer) putKey(k models.Key) {
	w.buf = append(w.buf, k[:]...)
}

func (w *writer) putString(s string) {
	w.putUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) putStringList(list []string) {
	w.putUint32(uint32(len(list)))
	for _, s := range list {
		w.putString(s)
	}
}
