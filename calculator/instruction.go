// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculator

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// InstructionLen is the exact length of an encoded instruction.
const InstructionLen = 3 * wrappers.ByteLen

// Operation selects what an instruction computes.
type Operation uint8

const (
	Add Operation = iota
	Subtract
)

func (op Operation) String() string {
	switch op {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	default:
		return "unknown"
	}
}

// Instruction is the decoded instruction payload:
// [operation (1 byte)][first operand (1 byte)][second operand (1 byte)]
type Instruction struct {
	Operation Operation
	First     uint8
	Second    uint8
}

// ParseInstruction decodes [data]. The buffer must be exactly
// [InstructionLen] bytes long.
func ParseInstruction(data []byte) (*Instruction, error) {
	p := wrappers.Packer{Bytes: data}
	inst := &Instruction{
		Operation: Operation(p.UnpackByte()),
		First:     p.UnpackByte(),
		Second:    p.UnpackByte(),
	}
	if p.Errored() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInstructionData, p.Err)
	}
	if p.Offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidInstructionData, len(data)-p.Offset)
	}
	return inst, nil
}

// Bytes returns the wire encoding of the instruction.
func (i *Instruction) Bytes() []byte {
	p := wrappers.Packer{MaxSize: InstructionLen}
	p.PackByte(byte(i.Operation))
	p.PackByte(i.First)
	p.PackByte(i.Second)
	return p.Bytes
}

// Evaluate computes the instruction's result in the width of the stored
// field. Unknown operations evaluate to 0.
func (i *Instruction) Evaluate() (uint32, error) {
	first, second := uint32(i.First), uint32(i.Second)
	switch i.Operation {
	case Add:
		return first + second, nil
	case Subtract:
		if first < second {
			return 0, fmt.Errorf("%w: %d - %d", ErrArithmeticUnderflow, first, second)
		}
		return first - second, nil
	default:
		return 0, nil
	}
}
