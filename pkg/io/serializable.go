package io

// Serializable defines the binary encoding/decoding interface. Errors are
// returned via BinReader/BinWriter Err field. These functions must have safe
// behavior when the passed BinReader/BinWriter is in an error state. Invocations
// to these functions tend to be nested, with this mechanism only the top-level
// caller should handle an error once and all the other code should just not
// panic while there is an error.
type Serializable interface {
	DecodeBinary(*BinReader)
	EncodeBinary(*BinWriter)
}

type decodable interface {
	DecodeBinary(*BinReader)
}

type encodable interface {
	EncodeBinary(*BinWriter)
}

// ToByteArray serializes a Serializable item into a byte slice.
func ToByteArray(s Serializable) ([]byte, error) {
	bw := NewBufBinWriter()
	s.EncodeBinary(bw.BinWriter)
	if bw.Err != nil {
		return nil, bw.Err
	}
	return bw.Bytes(), nil
}

// FromByteArray deserializes a Serializable item from a byte slice. The
// byte slice must contain the item and nothing else.
func FromByteArray(s Serializable, data []byte) error {
	br := NewBinReaderFromBuf(data)
	s.DecodeBinary(br)
	br.ReadEOF()
	return br.Err
}
