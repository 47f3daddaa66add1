package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpetcare/catbridge/internal/catlink"
)

func newTestLitterBox(api *stubAPI) *LitterBox {
	dat := baseData()
	dat["deviceType"] = "LITTER_BOX_599"
	return NewLitterBox(api, dat, nil)
}

func TestLitterBoxErrorPrecedence(t *testing.T) {
	api := newStubAPI()
	d := newTestLitterBox(api)

	assert.Equal(t, "Normal Operation", d.Error())

	setDetail(d.Base, map[string]interface{}{"currentError": "box full"})
	assert.Equal(t, "box full", d.Error())

	d.setActionError("Device busy (returnCode: 4007)")
	assert.Equal(t, "Device busy (returnCode: 4007)", d.Error())
}

func TestBoxFullSensitivity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"vendor code", "LEVEL_02", "Level 2"},
		{"bare digit", "2", "Level 2"},
		{"padded digit", "04", "Level 4"},
		{"empty", "", ""},
		{"unmappable", "LEVEL_99", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestLitterBox(newStubAPI())
			setDetail(d.Base, map[string]interface{}{"boxFullSensitivity": tt.raw})
			assert.Equal(t, tt.want, d.BoxFullSensitivity())
		})
	}
}

func TestSelectBoxFullSensitivity(t *testing.T) {
	api := newStubAPI()
	api.respond(catlink.APIBoxFullSetting, catlink.Response{"returnCode": 0})
	d := newTestLitterBox(api)

	require.NoError(t, d.SelectBoxFullSensitivity(context.Background(), "Level 3"))

	calls := api.callsTo(catlink.APIBoxFullSetting)
	require.Len(t, calls, 1)
	assert.Equal(t, "LEVEL_03", calls[0].Params["level"])

	require.Error(t, d.SelectBoxFullSensitivity(context.Background(), "Level 9"))
	assert.Len(t, api.callsTo(catlink.APIBoxFullSetting), 1)
}

func TestChangeBag(t *testing.T) {
	api := newStubAPI()
	api.respond(catlink.APIReplaceGarbageBag, catlink.Response{"returnCode": 0})
	d := newTestLitterBox(api)

	require.NoError(t, d.ChangeBag(context.Background(), true))
	require.NoError(t, d.ChangeBag(context.Background(), false))

	calls := api.callsTo(catlink.APIReplaceGarbageBag)
	require.Len(t, calls, 2)
	assert.Equal(t, "1", calls[0].Params["enable"])
	assert.Equal(t, "0", calls[1].Params["enable"])
}

func TestResetConsumables(t *testing.T) {
	api := newStubAPI()
	api.respond(catlink.APIConsumableReset, catlink.Response{"returnCode": 0})
	d := newTestLitterBox(api)

	require.NoError(t, d.ResetLitter(context.Background()))
	require.NoError(t, d.ResetDeodorant(context.Background()))

	calls := api.callsTo(catlink.APIConsumableReset)
	require.Len(t, calls, 2)
	assert.Equal(t, "CAT_LITTER", calls[0].Params["consumablesType"])
	assert.Equal(t, "DEODORIZER_02", calls[1].Params["consumablesType"])
	assert.Equal(t, "LITTER_BOX_599", calls[0].Params["deviceType"])
}

func TestErrorListDerivedStates(t *testing.T) {
	d := newTestLitterBox(newStubAPI())

	assert.Equal(t, "Cleaning Mode", d.KnobStatus())
	assert.False(t, d.GarbageToBeFull())

	setDetail(d.Base, map[string]interface{}{
		"deviceErrorList": []interface{}{
			map[string]interface{}{"errkey": "left_knob_abnormal"},
			map[string]interface{}{"errkey": "garbage_tobe_full_abnormal"},
		},
	})

	assert.Equal(t, "Empty Mode", d.KnobStatus())
	assert.True(t, d.GarbageToBeFull())
}

func TestGarbageStatus(t *testing.T) {
	d := newTestLitterBox(newStubAPI())
	setDetail(d.Base, map[string]interface{}{"garbageStatus": "02"})
	assert.Equal(t, "Movement Started", d.GarbageStatus())

	setDetail(d.Base, map[string]interface{}{"garbageStatus": "77"})
	assert.Equal(t, "Unknown", d.GarbageStatus())
}

func TestLitterBoxModes(t *testing.T) {
	api := newStubAPI()
	api.respond(catlink.APILitterboxChangeMode, catlink.Response{"returnCode": 0})
	d := newTestLitterBox(api)

	require.NoError(t, d.SelectMode(context.Background(), "time"))

	calls := api.callsTo(catlink.APILitterboxChangeMode)
	require.Len(t, calls, 1)
	assert.Equal(t, "02", calls[0].Params["workModel"])
	// Refresh goes through the litter box detail endpoint.
	assert.Len(t, api.callsTo(catlink.APILitterboxInfo), 1)
}
