package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func catData() map[string]interface{} {
	return map[string]interface{}{
		"id":         "cat-p1",
		"pet_id":     "p1",
		"deviceType": "CAT",
		"deviceName": "Misha",
		"weight":     4.3,
		"breedName":  "Siberian",
		"gender":     3,
		"year":       2,
		"month":      5,
		"birthday":   int64(1687392000000),
		"avatar":     "https://img.example/misha.png",
		"summary_simple": map[string]interface{}{
			"statusDescription": "healthy",
			"toilet": map[string]interface{}{
				"times": 4, "weightAvg": 4.25, "peed": 3, "pood": 1,
			},
			"drink": map[string]interface{}{"times": 7},
			"diet":  map[string]interface{}{"times": 2, "intakes": 55.0},
			"sport": map[string]interface{}{"activeDuration": 130},
		},
	}
}

func TestCatProfileIdentity(t *testing.T) {
	d := NewCatProfile(newStubAPI(), catData(), nil)

	assert.Equal(t, "cat-p1", d.ID())
	assert.Equal(t, "p1", d.PetID())
	assert.Equal(t, "Misha", d.Name())
	assert.Equal(t, "Siberian", d.Breed())
	assert.Equal(t, "Neutered male", d.GenderLabel())
	assert.Equal(t, 2, d.AgeYears())
	assert.Equal(t, 5, d.AgeMonths())
	assert.Equal(t, "2023-06-22", d.Birthday())
	assert.Equal(t, "https://img.example/misha.png", d.AvatarURL())
	assert.InDelta(t, 4.3, d.Weight(), 0.001)
}

func TestCatProfilePetIDFallback(t *testing.T) {
	d := NewCatProfile(newStubAPI(), map[string]interface{}{"id": "p9"}, nil)
	assert.Equal(t, "p9", d.PetID())
}

func TestCatProfileSummary(t *testing.T) {
	d := NewCatProfile(newStubAPI(), catData(), nil)

	assert.Equal(t, "healthy", d.Status())
	assert.Equal(t, 4, d.ToiletTimes())
	assert.InDelta(t, 4.25, d.ToiletWeightAvg(), 0.001)
	assert.Equal(t, 3, d.PeeTimes())
	assert.Equal(t, 1, d.PooTimes())
	assert.Equal(t, 7, d.DrinkTimes())
	assert.Equal(t, 2, d.DietTimes())
	assert.InDelta(t, 55.0, d.DietIntakes(), 0.001)
	assert.Equal(t, 130, d.SportActiveDuration())
}

func TestCatProfileSummaryAbsent(t *testing.T) {
	d := NewCatProfile(newStubAPI(), map[string]interface{}{"id": "cat-p2"}, nil)

	assert.Empty(t, d.Status())
	assert.Zero(t, d.ToiletTimes())
	assert.Zero(t, d.DrinkTimes())
	assert.Empty(t, d.Birthday())
	assert.Empty(t, d.GenderLabel())
}

func TestCatProfileUpdateMirrorsDetail(t *testing.T) {
	d := NewCatProfile(newStubAPI(), catData(), nil)
	var fired int
	d.Bus().Subscribe("test", func() { fired++ })

	dat := catData()
	dat["weight"] = 4.6
	d.UpdateData(dat)

	assert.Equal(t, 1, fired)
	assert.InDelta(t, 4.6, d.Weight(), 0.001)
	assert.Equal(t, d.Data()["weight"], d.Detail()["weight"])
}
