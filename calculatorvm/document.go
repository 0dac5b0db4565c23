// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/lexer"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

var errTruncatedDocument = errors.New("document ends inside an unclosed collection")

// unmarshalDocument decodes the YAML or JSON document [b] into [v].
// The decoder stops quietly at the end of a truncated flow collection,
// so the document is checked for completeness first.
func unmarshalDocument(b []byte, v interface{}) error {
	if _, err := parser.ParseBytes(b, 0); err != nil {
		return err
	}

	depth := 0
	for _, tk := range lexer.Tokenize(string(b)) {
		switch tk.Type {
		case token.SequenceStartType, token.MappingStartType:
			depth++
		case token.SequenceEndType, token.MappingEndType:
			depth--
		}
	}
	if depth != 0 {
		return errTruncatedDocument
	}

	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("couldn't decode document: %w", err)
	}
	return nil
}
