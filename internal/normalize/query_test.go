package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery_EscapesSpaces(t *testing.T) {
	assert.Equal(t, `NAME:*BANK\ OF\ AMERICA*`, BuildQuery("Bank of America"))
}

func TestBuildQuery_StripsPunctuation(t *testing.T) {
	assert.Equal(t, `NAME:*JPMORGAN\ CHASE\ BANK\ NA*`, BuildQuery("JPMorgan Chase Bank, N.A."))
}

func TestBuildQuery_ShortNames(t *testing.T) {
	assert.Equal(t, "", BuildQuery(""))
	assert.Equal(t, "", BuildQuery("A"))
	// Long enough raw, too short once cleaned.
	assert.Equal(t, "", BuildQuery("!!!  @  #"))
}

func TestBuildLooseQuery_DropsBranchTokens(t *testing.T) {
	assert.Equal(t, `NAME:*DEXIA\ BANK*`, BuildLooseQuery("Dexia Bank New York Branch"))
}

func TestBuildLooseQuery_SameAsStrictWhenNothingToDrop(t *testing.T) {
	name := "Wells Fargo Bank"
	assert.Equal(t, BuildQuery(name), BuildLooseQuery(name))
}
