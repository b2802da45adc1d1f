// Package bytesize parses human-readable byte sizes used in configuration,
// such as the photo delivery ceiling ("10MB", "512Ki", "1Gi").
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize represents a size in bytes that can be unmarshaled from
// human-readable strings like "10MB", "512Ki" or plain numbers.
//
// Supported formats:
//   - Plain numbers: 1024, 10485760
//   - Decimal units (×1000): K/KB, M/MB, G/GB
//   - Binary units (×1024): Ki/KiB, Mi/MiB, Gi/GiB
//   - Bytes: B
type ByteSize uint64

// Common byte size constants
const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
)

// suffixes are checked longest-first so "KiB" is not consumed as "B".
var suffixes = []struct {
	unit string
	mult ByteSize
}{
	{"kib", KiB}, {"mib", MiB}, {"gib", GiB},
	{"ki", KiB}, {"mi", MiB}, {"gi", GiB},
	{"kb", KB}, {"mb", MB}, {"gb", GB},
	{"k", KB}, {"m", MB}, {"g", GB},
	{"b", B},
}

// Parse converts a human-readable size string into a ByteSize.
// Whitespace around and between the number and unit is ignored; units are
// case-insensitive. Fractional values like "1.5Mi" are supported.
func Parse(s string) (ByteSize, error) {
	trimmed := strings.TrimSpace(strings.ToLower(s))
	if trimmed == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	mult := B
	num := trimmed
	for _, sfx := range suffixes {
		if strings.HasSuffix(trimmed, sfx.unit) {
			mult = sfx.mult
			num = strings.TrimSpace(strings.TrimSuffix(trimmed, sfx.unit))
			break
		}
	}

	if num == "" {
		return 0, fmt.Errorf("invalid byte size %q: missing number", s)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	return ByteSize(value * float64(mult)), nil
}

// String renders the size with the largest exact binary unit, falling back to
// a plain byte count.
func (b ByteSize) String() string {
	switch {
	case b >= GiB && b%GiB == 0:
		return fmt.Sprintf("%dGi", b/GiB)
	case b >= MiB && b%MiB == 0:
		return fmt.Sprintf("%dMi", b/MiB)
	case b >= KiB && b%KiB == 0:
		return fmt.Sprintf("%dKi", b/KiB)
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize works in
// YAML configuration values.
func (b *ByteSize) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
