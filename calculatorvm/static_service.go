// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/calculatorvm/calculator"
)

// StaticService defines the base service for the calculator vm
type StaticService struct{}

// CreateStaticService ...
func CreateStaticService() *StaticService {
	return &StaticService{}
}

// EncodeInstructionArgs are arguments for EncodeInstruction
type EncodeInstructionArgs struct {
	Operation json.Uint32 `json:"operation"`
	First     json.Uint32 `json:"first"`
	Second    json.Uint32 `json:"second"`
}

// EncodeInstructionReply is the reply from EncodeInstruction
type EncodeInstructionReply struct {
	// Hex encoded instruction data
	Bytes string `json:"bytes"`
}

// EncodeInstruction returns the instruction data computing [args]
func (ss *StaticService) EncodeInstruction(_ *http.Request, args *EncodeInstructionArgs, reply *EncodeInstructionReply) error {
	calcArgs := CalculateArgs{
		Operation: args.Operation,
		First:     args.First,
		Second:    args.Second,
	}
	inst, err := calcArgs.instruction()
	if err != nil {
		return err
	}

	reply.Bytes, err = formatting.EncodeWithChecksum(formatting.Hex, inst.Bytes())
	if err != nil {
		return fmt.Errorf("couldn't encode instruction: %w", err)
	}
	return nil
}

// DecodeInstructionArgs are arguments for DecodeInstruction
type DecodeInstructionArgs struct {
	// Hex encoded instruction data
	Bytes string `json:"bytes"`
}

// DecodeInstructionReply is the reply from DecodeInstruction
type DecodeInstructionReply struct {
	Operation     json.Uint32 `json:"operation"`
	OperationName string      `json:"operationName"`
	First         json.Uint32 `json:"first"`
	Second        json.Uint32 `json:"second"`
}

// DecodeInstruction returns the instruction held in [args.Bytes]
func (ss *StaticService) DecodeInstruction(_ *http.Request, args *DecodeInstructionArgs, reply *DecodeInstructionReply) error {
	bytes, err := formatting.Decode(formatting.Hex, args.Bytes)
	if err != nil {
		return fmt.Errorf("couldn't decode instruction bytes: %w", err)
	}
	inst, err := calculator.ParseInstruction(bytes)
	if err != nil {
		return err
	}

	reply.Operation = json.Uint32(inst.Operation)
	reply.OperationName = inst.Operation.String()
	reply.First = json.Uint32(inst.First)
	reply.Second = json.Uint32(inst.Second)
	return nil
}
