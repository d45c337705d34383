package vernamfs

import (
	"encoding/binary"
	"io"
)

// Payload is the {offset, length, data} triple shipped from the remote
// side to the vault side. Data is raw, still-XORed bytes copied verbatim
// from the volume at [Offset, Offset+Length).
type Payload struct {
	Offset uint64
	Length uint64
	Data   []byte
}

// WritePayload encodes p to w: two little-endian uint64s (offset, length)
// followed by the raw data. No other framing is used.
func WritePayload(w io.Writer, p Payload) error {
	var head [16]byte
	binary.LittleEndian.PutUint64(head[0:8], p.Offset)
	binary.LittleEndian.PutUint64(head[8:16], p.Length)

	if _, err := w.Write(head[:]); err != nil {
		return err
	}

	if len(p.Data) == 0 {
		return nil
	}

	_, err := w.Write(p.Data)

	return err
}

// ReadPayload decodes a [Payload] from r. It returns [ErrTruncated] if the
// header or the data section is short.
func ReadPayload(r io.Reader) (Payload, error) {
	var head [16]byte

	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Payload{}, ErrTruncated
	}

	p := Payload{
		Offset: binary.LittleEndian.Uint64(head[0:8]),
		Length: binary.LittleEndian.Uint64(head[8:16]),
	}

	if p.Length == 0 {
		return p, nil
	}

	p.Data = make([]byte, p.Length)
	if _, err := io.ReadFull(r, p.Data); err != nil {
		return Payload{}, ErrTruncated
	}

	return p, nil
}
