package fdic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNum_ToleratesRegistryTyping(t *testing.T) {
	var inst Institution
	err := json.Unmarshal([]byte(`{"CERT": "3510", "FED_RSSD": 480228.0, "ASSET": "", "ACTIVE": null}`), &inst)
	require.NoError(t, err)

	assert.Equal(t, "3510", inst.Cert.ID())
	assert.Equal(t, "480228", inst.RSSD.ID())
	assert.False(t, inst.Assets.Valid)
	assert.False(t, inst.IsActive())
}

func TestNum_NonNumericStringTreatedAsAbsent(t *testing.T) {
	var n Num
	require.NoError(t, json.Unmarshal([]byte(`"N/A"`), &n))
	assert.False(t, n.Valid)
	assert.Equal(t, "", n.ID())
}

func TestClosureDate_PrefersFileDate(t *testing.T) {
	i := Institution{EndDate: "2001-06-30", FileDate: "2001-07-02"}
	assert.Equal(t, "2001-07-02", i.ClosureDate())

	i.FileDate = ""
	assert.Equal(t, "2001-06-30", i.ClosureDate())
}
