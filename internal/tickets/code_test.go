package tickets

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^TICKET-[A-HJ-NP-Z2-9]{6}-\d{4}$`)

func TestGenerateMatchesFormat(t *testing.T) {
	gen := NewCodeGenerator()

	code, err := gen.Generate()

	require.NoError(t, err)
	assert.Regexp(t, codePattern, code)
}

func TestGenerateNeverUsesAmbiguousCharacters(t *testing.T) {
	gen := NewCodeGenerator()

	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.NotContains(t, code[7:13], "0")
		assert.NotContains(t, code[7:13], "O")
		assert.NotContains(t, code[7:13], "1")
		assert.NotContains(t, code[7:13], "I")
	}
}

func TestGenerateUniqueAcrossTenThousandDraws(t *testing.T) {
	gen := NewCodeGenerator()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code after %d draws: %s", i+1, code)
		}
		seen[code] = struct{}{}
	}
}
