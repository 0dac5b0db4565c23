// (c) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package calculatorvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalDocumentRejectsTruncatedInput(t *testing.T) {
	tests := map[string]string{
		"open sequence":        "accounts: [",
		"open nested sequence": "accounts: [[1, 2]",
		"open mapping":         `{"programID": "x"`,
		"open nested mapping":  `{"accounts": [{"id": "x"}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			v := map[string]interface{}{}
			assert.Error(t, unmarshalDocument([]byte(doc), &v))
		})
	}
}

func TestUnmarshalDocument(t *testing.T) {
	for _, doc := range []string{
		"accounts: [a, b]\nspace: 4\n",
		`{"accounts": ["a", "b"], "space": 4}`,
		// brackets inside strings aren't collections
		"accounts: [\"[\", b]\nspace: 4\n",
	} {
		v := struct {
			Accounts []string `yaml:"accounts"`
			Space    int      `yaml:"space"`
		}{}
		require.NoError(t, unmarshalDocument([]byte(doc), &v), doc)
		assert.Len(t, v.Accounts, 2)
		assert.Equal(t, 4, v.Space)
	}
}
