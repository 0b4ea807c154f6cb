package starknet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NethermindEth/juno-sdk/core/felt"
	"github.com/NethermindEth/juno-sdk/utils"
	"github.com/klauspost/compress/gzip"
)

type CompressionKind uint8

const (
	CompressionJSON CompressionKind = iota + 1
	CompressionIO
)

func (k CompressionKind) String() string {
	switch k {
	case CompressionJSON:
		return "json"
	case CompressionIO:
		return "io"
	default:
		return "<unknown>"
	}
}

type CompressionError struct {
	Kind CompressionKind
	Err  error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("class compression (%s): %v", e.Kind, e.Err)
}

func (e *CompressionError) Unwrap() error {
	return e.Err
}

type CompressionConfig struct {
	Level int `mapstructure:"compression-level"`
}

// DefaultCompressionConfig optimises for payload size.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{Level: gzip.BestCompression}
}

// CompressedSierraClass is the form in which the gateway accepts Sierra
// classes: the program is base64(gzip(JSON array of hex felts)).
type CompressedSierraClass struct {
	SierraProgram        string            `json:"sierra_program"`
	ContractClassVersion string            `json:"contract_class_version"`
	EntryPoints          SierraEntryPoints `json:"entry_points_by_type"`
	Abi                  string            `json:"abi"`
}

type CompressedLegacyClass struct {
	Program     string          `json:"program"`
	EntryPoints EntryPoints     `json:"entry_points_by_type"`
	Abi         json.RawMessage `json:"abi,omitempty"`
}

// CompressedClass holds exactly one compressed class and marshals as that
// class.
type CompressedClass struct {
	Sierra *CompressedSierraClass
	Legacy *CompressedLegacyClass
}

func (c CompressedClass) MarshalJSON() ([]byte, error) {
	switch {
	case c.Sierra != nil:
		return json.Marshal(c.Sierra)
	case c.Legacy != nil:
		return json.Marshal(c.Legacy)
	default:
		return nil, errors.New("empty compressed class")
	}
}

func CompressSierraClass(class *SierraClass, cfg CompressionConfig) (*CompressedSierraClass, error) {
	program := utils.Map(class.Program, (*felt.Felt).String)
	if program == nil {
		program = []string{}
	}
	programJSON, err := json.Marshal(program)
	if err != nil {
		return nil, &CompressionError{Kind: CompressionJSON, Err: err}
	}

	compressed, err := utils.Gzip64Encode(programJSON, cfg.Level)
	if err != nil {
		return nil, &CompressionError{Kind: CompressionIO, Err: err}
	}

	return &CompressedSierraClass{
		SierraProgram:        compressed,
		ContractClassVersion: class.Version,
		EntryPoints:          class.EntryPoints,
		Abi:                  class.Abi,
	}, nil
}

func CompressLegacyClass(class *LegacyClass, cfg CompressionConfig) (*CompressedLegacyClass, error) {
	var program bytes.Buffer
	if err := json.Compact(&program, class.Program); err != nil {
		return nil, &CompressionError{Kind: CompressionJSON, Err: err}
	}

	compressed, err := utils.Gzip64Encode(program.Bytes(), cfg.Level)
	if err != nil {
		return nil, &CompressionError{Kind: CompressionIO, Err: err}
	}

	return &CompressedLegacyClass{
		Program:     compressed,
		EntryPoints: class.EntryPoints,
		Abi:         class.Abi,
	}, nil
}

// CompressClass compresses whichever class c holds.
func CompressClass(c *DeployedClass, cfg CompressionConfig) (*CompressedClass, error) {
	switch c.Kind {
	case SierraKind:
		sierra, err := CompressSierraClass(c.Sierra, cfg)
		if err != nil {
			return nil, err
		}
		return &CompressedClass{Sierra: sierra}, nil
	case LegacyKind:
		legacy, err := CompressLegacyClass(c.Legacy, cfg)
		if err != nil {
			return nil, err
		}
		return &CompressedClass{Legacy: legacy}, nil
	default:
		return nil, fmt.Errorf("unknown class kind %d", c.Kind)
	}
}

// DecompressProgram reverses the program encoding and returns the raw JSON.
func DecompressProgram(program string) ([]byte, error) {
	decompressed, err := utils.Gzip64Decode(program)
	if err != nil {
		return nil, &CompressionError{Kind: CompressionIO, Err: err}
	}
	return decompressed, nil
}

// DecompressSierraProgram decodes a compressed Sierra program back to felts.
func DecompressSierraProgram(program string) ([]*felt.Felt, error) {
	raw, err := DecompressProgram(program)
	if err != nil {
		return nil, err
	}
	var felts []*felt.Felt
	if err = json.Unmarshal(raw, &felts); err != nil {
		return nil, &CompressionError{Kind: CompressionJSON, Err: err}
	}
	return felts, nil
}
