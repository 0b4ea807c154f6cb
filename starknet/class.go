package starknet

import (
	"encoding/json"
	"fmt"

	"github.com/NethermindEth/juno-sdk/core/felt"
)

type EntryPoint struct {
	Selector *felt.Felt `json:"selector"`
	Offset   *felt.Felt `json:"offset"`
}

type SierraEntryPoints struct {
	Constructor []SierraEntryPoint `json:"CONSTRUCTOR"`
	External    []SierraEntryPoint `json:"EXTERNAL"`
	L1Handler   []SierraEntryPoint `json:"L1_HANDLER"`
}

// SierraClass is a flattened Sierra (Cairo 1) contract class.
type SierraClass struct {
	Abi         string            `json:"abi"`
	EntryPoints SierraEntryPoints `json:"entry_points_by_type"`
	Program     []*felt.Felt      `json:"sierra_program"`
	Version     string            `json:"contract_class_version"`
}

type SierraEntryPoint struct {
	Index    uint64     `json:"function_idx"`
	Selector *felt.Felt `json:"selector"`
}

type EntryPoints struct {
	Constructor []EntryPoint `json:"CONSTRUCTOR"`
	External    []EntryPoint `json:"EXTERNAL"`
	L1Handler   []EntryPoint `json:"L1_HANDLER"`
}

// LegacyClass is a Cairo 0 contract class. Program and Abi are kept as raw
// JSON since they are only ever compressed or forwarded.
type LegacyClass struct {
	Abi         json.RawMessage `json:"abi,omitempty"`
	EntryPoints EntryPoints     `json:"entry_points_by_type"`
	Program     json.RawMessage `json:"program"`
}

type ClassKind uint8

const (
	SierraKind ClassKind = iota + 1
	LegacyKind
)

func (k ClassKind) String() string {
	switch k {
	case SierraKind:
		return "sierra"
	case LegacyKind:
		return "legacy"
	default:
		return "<unknown>"
	}
}

// DeployedClass holds exactly one of a Sierra or a legacy class, as selected
// by Kind. Values are only built by DecodeDeployedClass or the New*
// constructors and are never mutated afterwards.
type DeployedClass struct {
	Kind   ClassKind
	Sierra *SierraClass
	Legacy *LegacyClass
}

func NewSierraDeployedClass(class *SierraClass) *DeployedClass {
	return &DeployedClass{Kind: SierraKind, Sierra: class}
}

func NewLegacyDeployedClass(class *LegacyClass) *DeployedClass {
	return &DeployedClass{Kind: LegacyKind, Legacy: class}
}

// ClassFormatError reports a class definition that is neither a valid Sierra
// nor a valid legacy class.
type ClassFormatError struct {
	Field string
	Err   error
}

func (e *ClassFormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("class definition: missing field %q", e.Field)
	}
	return fmt.Sprintf("class definition: field %q: %v", e.Field, e.Err)
}

func (e *ClassFormatError) Unwrap() error {
	return e.Err
}

// DecodeDeployedClass discriminates a class definition by the fields present:
// "program" means a legacy class, otherwise "sierra_program" and
// "contract_class_version" are required.
func DecodeDeployedClass(data []byte) (*DeployedClass, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ClassFormatError{Field: "<root>", Err: err}
	}

	decode := func(name string, v any, required bool) error {
		raw, found := fields[name]
		if !found {
			if required {
				return &ClassFormatError{Field: name}
			}
			return nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return &ClassFormatError{Field: name, Err: err}
		}
		return nil
	}

	if _, found := fields["program"]; found {
		class := new(LegacyClass)
		if err := decode("program", &class.Program, true); err != nil {
			return nil, err
		}
		if err := decode("entry_points_by_type", &class.EntryPoints, true); err != nil {
			return nil, err
		}
		if err := decode("abi", &class.Abi, false); err != nil {
			return nil, err
		}
		if string(class.Abi) == "null" {
			class.Abi = nil
		}
		return NewLegacyDeployedClass(class), nil
	}

	class := new(SierraClass)
	if err := decode("sierra_program", &class.Program, true); err != nil {
		return nil, err
	}
	if err := decode("contract_class_version", &class.Version, true); err != nil {
		return nil, err
	}
	if err := decode("entry_points_by_type", &class.EntryPoints, true); err != nil {
		return nil, err
	}
	if err := decode("abi", &class.Abi, true); err != nil {
		return nil, err
	}
	return NewSierraDeployedClass(class), nil
}

func (c *DeployedClass) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeDeployedClass(data)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

func (c DeployedClass) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case SierraKind:
		return json.Marshal(c.Sierra)
	case LegacyKind:
		return json.Marshal(c.Legacy)
	default:
		return nil, fmt.Errorf("unknown class kind %d", c.Kind)
	}
}
