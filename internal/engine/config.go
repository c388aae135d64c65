package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ArrayDiffMode selects the array comparison strategy.
//
// Only IndexMode is executed by the pipeline today; the other modes
// validate and fall back to position-based comparison. They remain in
// the configuration surface because the binary config frame reserves
// them.
type ArrayDiffMode uint8

const (
	// IndexMode compares array elements by position. Fast, no
	// reorder detection.
	IndexMode ArrayDiffMode = 0
	// HashWindowMode reserves rolling-window comparison.
	HashWindowMode ArrayDiffMode = 1
	// FullMode reserves LCS comparison for small arrays.
	FullMode ArrayDiffMode = 2
)

// Config validation failures.
var (
	ErrConfigTooShort      = errors.New("engine: config frame too short")
	ErrConfigInvalidMode   = errors.New("engine: invalid array diff mode")
	ErrConfigInvalidLimits = errors.New("engine: memory and input limits must be non-zero")
	ErrConfigInvalidWindow = errors.New("engine: hash window size must be non-zero")
)

// configFrameSize is the length of the binary config frame.
const configFrameSize = 19

// Config carries the engine's capability limits.
//
// The YAML tags serve host-side config files; the binary frame codec
// serves the C boundary, where the host hands create_engine a packed
// frame instead of a parsed structure.
type Config struct {
	// MaxMemoryBytes is advisory: it is validated and carried in the
	// config frame, but the engine does not size or cap any buffer by
	// it.
	MaxMemoryBytes uint32 `yaml:"max_memory_bytes"`

	// MaxInputSize is the total input budget; each side's buffer
	// holds MaxInputSize/2 bytes.
	MaxInputSize uint32 `yaml:"max_input_size"`

	// MaxObjectKeys bounds the members of a single object.
	MaxObjectKeys uint32 `yaml:"max_object_keys"`

	// ArrayDiffMode selects the array strategy.
	ArrayDiffMode ArrayDiffMode `yaml:"array_diff_mode"`

	// HashWindowSize applies to HashWindowMode.
	HashWindowSize uint16 `yaml:"hash_window_size"`

	// MaxFullArraySize bounds FullMode; larger arrays fall back to
	// IndexMode.
	MaxFullArraySize uint32 `yaml:"max_full_array_size"`
}

// DefaultConfig returns the standard limits: 32MB result memory,
// 64MB total input.
func DefaultConfig() Config {
	return Config{
		MaxMemoryBytes:   32 * 1024 * 1024,
		MaxInputSize:     64 * 1024 * 1024,
		MaxObjectKeys:    100_000,
		ArrayDiffMode:    IndexMode,
		HashWindowSize:   64,
		MaxFullArraySize: 1024,
	}
}

// EdgeConfig returns limits sized for edge runtimes.
func EdgeConfig() Config {
	return Config{
		MaxMemoryBytes:   16 * 1024 * 1024,
		MaxInputSize:     32 * 1024 * 1024,
		MaxObjectKeys:    50_000,
		ArrayDiffMode:    IndexMode,
		HashWindowSize:   32,
		MaxFullArraySize: 512,
	}
}

// Validate checks the limits regardless of how the config was built.
func (c Config) Validate() error {
	if c.MaxMemoryBytes == 0 || c.MaxInputSize == 0 {
		return ErrConfigInvalidLimits
	}
	if c.HashWindowSize == 0 {
		return ErrConfigInvalidWindow
	}
	if c.ArrayDiffMode > FullMode {
		return fmt.Errorf("%w: %d", ErrConfigInvalidMode, c.ArrayDiffMode)
	}
	return nil
}

// ConfigFromBytes decodes the 19-byte little-endian config frame:
//
//	[u32 max_memory_bytes][u32 max_input_size][u32 max_object_keys]
//	[u8 array_diff_mode][u16 hash_window_size][u32 max_full_array_size]
func ConfigFromBytes(b []byte) (Config, error) {
	if len(b) < configFrameSize {
		return Config{}, fmt.Errorf("%w: %d bytes", ErrConfigTooShort, len(b))
	}
	c := Config{
		MaxMemoryBytes:   binary.LittleEndian.Uint32(b[0:4]),
		MaxInputSize:     binary.LittleEndian.Uint32(b[4:8]),
		MaxObjectKeys:    binary.LittleEndian.Uint32(b[8:12]),
		ArrayDiffMode:    ArrayDiffMode(b[12]),
		HashWindowSize:   binary.LittleEndian.Uint16(b[13:15]),
		MaxFullArraySize: binary.LittleEndian.Uint32(b[15:19]),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ToBytes encodes the config into its binary frame.
func (c Config) ToBytes() [configFrameSize]byte {
	var b [configFrameSize]byte
	binary.LittleEndian.PutUint32(b[0:4], c.MaxMemoryBytes)
	binary.LittleEndian.PutUint32(b[4:8], c.MaxInputSize)
	binary.LittleEndian.PutUint32(b[8:12], c.MaxObjectKeys)
	b[12] = uint8(c.ArrayDiffMode)
	binary.LittleEndian.PutUint16(b[13:15], c.HashWindowSize)
	binary.LittleEndian.PutUint32(b[15:19], c.MaxFullArraySize)
	return b
}
