package court

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	courts := All()
	require.Len(t, courts, 27)

	seen := make(map[Court]bool)
	for _, c := range courts {
		assert.False(t, seen[c], "duplicate court %s", c)
		seen[c] = true
		assert.True(t, c.Valid())
	}

	// Mutating the returned slice must not leak into the package list.
	courts[0] = "XX"
	assert.Equal(t, TJAC, All()[0])
}

func TestParse(t *testing.T) {
	c, err := Parse(" TJSP ")
	require.NoError(t, err)
	assert.Equal(t, TJSP, c)

	_, err = Parse("tjsp")
	assert.Error(t, err, "courts are case-sensitive")

	_, err = Parse("")
	assert.Error(t, err)
}

func TestValidateSelection(t *testing.T) {
	tests := []struct {
		name        string
		origin      Court
		destination Court
		wantErr     bool
	}{
		{"valid pair", TJSP, TJRJ, false},
		{"same court", TJSP, TJSP, true},
		{"empty origin", "", TJRJ, true},
		{"empty destination", TJSP, "", true},
		{"unknown origin", "TJXX", TJRJ, true},
		{"unknown destination", TJSP, "tjrj", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelection(tt.origin, tt.destination)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSelection)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsInstitutionalEmail(t *testing.T) {
	assert.True(t, IsInstitutionalEmail("judge@tjsp.jus.br"))
	assert.True(t, IsInstitutionalEmail("Judge@TJDFT.JUS.BR"))
	assert.False(t, IsInstitutionalEmail("judge@gmail.com"))
	assert.False(t, IsInstitutionalEmail("no-at-sign"))
}
