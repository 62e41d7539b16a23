package bcf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bcf "github.com/opensource-bim/bcf"
)

func TestParseGuid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"canonical", "3f9e2a10-1b2c-4d5e-8f9a-0a1b2c3d4e5f", true},
		{"uppercase hex", "3F9E2A10-1B2C-4D5E-8F9A-0A1B2C3D4E5F", true},
		{"short last segment", "3f9e2a10-1b2c-4d5e-8f9a-0a1b2c3d4e5", false},
		{"not a guid", "not-a-guid", false},
		{"empty", "", false},
		{"non-hex digit", "3f9e2a10-1b2c-4d5e-8f9a-0a1b2c3d4g5f", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := bcf.ParseGuid(tt.in)
			if !tt.ok {
				require.Error(t, err)
				iss, ok := bcf.AsIssues(err)
				require.True(t, ok)
				require.Len(t, iss, 1)
				assert.Equal(t, bcf.CodeInvalidGuid, iss[0].Code)
				return
			}
			require.NoError(t, err)
			// canonical form is lowercased
			assert.Equal(t, bcf.Guid("3f9e2a10-1b2c-4d5e-8f9a-0a1b2c3d4e5f"), g)
		})
	}
}

func TestParseIfcGuid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"valid", "2O2Fr$t4X7Zf8NoRxtNsnb", true},
		{"underscore and digits", "0123456789_$abcdefghij", true},
		{"21 chars", "2O2Fr$t4X7Zf8NoRxtNsn", false},
		{"23 chars", "2O2Fr$t4X7Zf8NoRxtNsnbb", false},
		{"dash", "2O2Fr-t4X7Zf8NoRxtNsnb", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := bcf.ParseIfcGuid(tt.in)
			if !tt.ok {
				require.Error(t, err)
				iss, ok := bcf.AsIssues(err)
				require.True(t, ok)
				assert.Equal(t, bcf.CodeInvalidIfcGuid, iss[0].Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, bcf.IfcGuid(tt.in), g)
		})
	}
}

func TestNewGuid(t *testing.T) {
	seen := map[bcf.Guid]bool{}
	for i := 0; i < 64; i++ {
		g := bcf.NewGuid()
		_, err := bcf.ParseGuid(string(g))
		require.NoError(t, err, "minted guid must be canonical: %s", g)
		require.False(t, seen[g], "minted guid repeated: %s", g)
		seen[g] = true
	}
}
