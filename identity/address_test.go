package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"lowercases and strips punctuation", "123 Main St., Nashville", "123 main nashville"},
		{"full suffix removed", "123 Main Street, Nashville", "123 main nashville"},
		{"no city differs from with city", "123 main st", "123 main"},
		{"directional removed", "456 North Oak Avenue", "456 oak"},
		{"single letter directional", "789 N Gallatin Pike W", "789 gallatin pike"},
		{"parkway and trail", "12 Old Hickory Pkwy Trail", "12 old hickory"},
		{"collapses internal whitespace", "  12   Elm\tDr  ", "12 elm"},
		{"suffix token mid-string removed", "100 Court House Rd", "100 house"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.input))
		})
	}
}

func TestNormalizeAddressIdempotent(t *testing.T) {
	inputs := []string{
		"123 Main Street, Nashville",
		"456 Oak Ave, Mt Juliet",
		"789 N Gallatin Pike",
		"",
		"no suffix at all",
		"!!!",
	}
	for _, in := range inputs {
		once := NormalizeAddress(in)
		assert.Equal(t, once, NormalizeAddress(once), "normalize should be idempotent for %q", in)
	}
}

func TestNormalizeAddressMergesVariants(t *testing.T) {
	a := NormalizeAddress("123 Main St, Nashville")
	b := NormalizeAddress("123 main street, nashville")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, NormalizeAddress("456 Oak Ave, Mt Juliet"))
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint("123 Main St, Nashville")
	b := Fingerprint("123 MAIN STREET, Nashville")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, Fingerprint("456 Oak Ave"))
}
