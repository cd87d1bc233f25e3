// Package fixedn implements the fixed-point decimal representation used by
// Neo for GAS amounts and fees: an integer number of datoshi (10⁻⁸ GAS).
package fixedn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/halyard-dev/neokit/pkg/io"
)

const (
	decimals = 8
	one      = 100000000
)

var errInvalidString = errors.New("fixed8 must satisfy following regex \\d+(\\.\\d{1,8})?")

// Fixed8 represents a fixed-point number with precision 10^-8.
type Fixed8 int64

// String implements the Stringer interface.
func (f Fixed8) String() string {
	buf := new(strings.Builder)
	val := int64(f)
	if val < 0 {
		buf.WriteRune('-')
		val = -val
	}
	str := strconv.FormatInt(val/one, 10)
	buf.WriteString(str)
	val %= one
	if val > 0 {
		buf.WriteRune('.')
		str = strconv.FormatInt(val, 10)
		for i := len(str); i < 8; i++ {
			buf.WriteRune('0')
		}
		buf.WriteString(strings.TrimRight(str, "0"))
	}
	return buf.String()
}

// FloatValue returns the original value representing Fixed8 as float64.
func (f Fixed8) FloatValue() float64 {
	return float64(f) / one
}

// IntegralValue returns the integer part of the original value representing
// Fixed8 as int64.
func (f Fixed8) IntegralValue() int64 {
	return int64(f) / one
}

// FractionalValue returns the decimal part of the original value. It has the
// same sign as f, so that f = f.IntegralValue() + f.FractionalValue().
func (f Fixed8) FractionalValue() int32 {
	return int32(int64(f) % one)
}

// Fixed8FromInt64 returns a new Fixed8 type multiplied by one.
func Fixed8FromInt64(val int64) Fixed8 {
	return Fixed8(one * val)
}

// Fixed8FromFloat returns a new Fixed8 type multiplied by one.
func Fixed8FromFloat(val float64) Fixed8 {
	return Fixed8(int64(one * val))
}

// Fixed8FromString parses a string as a decimal value and returns Fixed8
// representation of it.
func Fixed8FromString(s string) (Fixed8, error) {
	num, err := FromString(s, decimals)
	if err != nil {
		return 0, err
	}
	return Fixed8(num), nil
}

// FromString converts a string to an integer number scaled by 10^precision.
func FromString(s string, precision int) (int64, error) {
	parts := strings.SplitN(s, ".", 2)
	ip, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, errInvalidString
	}
	mul := int64(1)
	for i := 0; i < precision; i++ {
		mul *= 10
	}
	res := ip * mul
	if len(parts) == 1 {
		return res, nil
	}
	fs := parts[1]
	if len(fs) == 0 || len(fs) > precision {
		return 0, errInvalidString
	}
	fp, err := strconv.ParseUint(fs, 10, 64)
	if err != nil {
		return 0, errInvalidString
	}
	for i := len(fs); i < precision; i++ {
		fp *= 10
	}
	if strings.HasPrefix(parts[0], "-") {
		res -= int64(fp)
	} else {
		res += int64(fp)
	}
	return res, nil
}

// ToString converts an integer number scaled by 10^precision to its decimal
// string representation.
func ToString(val int64, precision int) string {
	mul := int64(1)
	for i := 0; i < precision; i++ {
		mul *= 10
	}
	neg := val < 0
	if neg {
		val = -val
	}
	var sb strings.Builder
	if neg {
		sb.WriteRune('-')
	}
	sb.WriteString(strconv.FormatInt(val/mul, 10))
	if rem := val % mul; rem != 0 {
		sb.WriteRune('.')
		frac := strconv.FormatInt(rem, 10)
		for i := len(frac); i < precision; i++ {
			sb.WriteRune('0')
		}
		sb.WriteString(strings.TrimRight(frac, "0"))
	}
	return sb.String()
}

// UnmarshalJSON implements the json unmarshaller interface.
func (f *Fixed8) UnmarshalJSON(data []byte) error {
	if len(data) > 2 {
		if data[0] == '"' && data[len(data)-1] == '"' {
			data = data[1 : len(data)-1]
		}
	}
	return f.setFromString(string(data))
}

// UnmarshalYAML implements the yaml unmarshaler interface.
func (f *Fixed8) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	err := unmarshal(&s)
	if err != nil {
		return err
	}
	return f.setFromString(s)
}

func (f *Fixed8) setFromString(s string) error {
	p, err := Fixed8FromString(s)
	if err != nil {
		return fmt.Errorf("failed to convert string to fixed8: %w", err)
	}
	*f = p
	return nil
}

// MarshalJSON implements the json marshaller interface.
func (f Fixed8) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// MarshalYAML implements the yaml marshaller interface.
func (f Fixed8) MarshalYAML() (any, error) {
	return f.String(), nil
}

// DecodeBinary implements the io.Serializable interface.
func (f *Fixed8) DecodeBinary(r *io.BinReader) {
	*f = Fixed8(r.ReadU64LE())
}

// EncodeBinary implements the io.Serializable interface.
func (f *Fixed8) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(*f))
}
