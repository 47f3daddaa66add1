package device

import (
	"context"
	"time"

	"github.com/spf13/cast"

	"github.com/openpetcare/catbridge/config"
)

// CatIDPrefix namespaces pet pseudo-device ids away from appliance ids.
const CatIDPrefix = "cat-"

var genderLabels = map[int]string{
	1: "Male",
	2: "Female",
	3: "Neutered male",
	4: "Neutered female",
}

// CatProfile is a pseudo-device representing a pet. Its detail is the
// list payload itself; the coordinator attaches the daily activity
// summary before reconciliation.
type CatProfile struct {
	*Base
}

func NewCatProfile(api API, dat map[string]interface{}, override *config.DeviceOverride) *CatProfile {
	b := newBase(api, dat, override)
	d := &CatProfile{Base: b}
	b.refresh = d.refreshFromData
	b.detail = dat
	return d
}

// UpdateData also mirrors the payload into detail; cats have no
// separate detail endpoint.
func (d *CatProfile) UpdateData(dat map[string]interface{}) {
	d.mu.Lock()
	d.data = dat
	d.detail = dat
	d.mu.Unlock()
	d.bus.Notify()
}

func (d *CatProfile) refreshFromData(context.Context) {
	d.mu.Lock()
	d.detail = d.data
	d.actionError = ""
	d.mu.Unlock()
	d.bus.Notify()
}

// PetID is the vendor pet identity without the registry prefix.
func (d *CatProfile) PetID() string {
	if id := d.dataStr("pet_id"); id != "" {
		return id
	}
	return d.dataStr("id")
}

func (d *CatProfile) Weight() float64 {
	return cast.ToFloat64(d.Data()["weight"])
}

func (d *CatProfile) Breed() string {
	return d.dataStr("breedName")
}

func (d *CatProfile) GenderLabel() string {
	return genderLabels[cast.ToInt(d.Data()["gender"])]
}

func (d *CatProfile) AgeYears() int {
	if y := cast.ToInt(d.Data()["year"]); y != 0 {
		return y
	}
	return cast.ToInt(d.Data()["age"])
}

func (d *CatProfile) AgeMonths() int {
	return cast.ToInt(d.Data()["month"])
}

// Birthday renders the epoch-millis birthday as an ISO date.
func (d *CatProfile) Birthday() string {
	ts := cast.ToInt64(d.Data()["birthday"])
	if ts == 0 {
		return ""
	}
	return time.UnixMilli(ts).UTC().Format("2006-01-02")
}

func (d *CatProfile) AvatarURL() string {
	return d.dataStr("avatar")
}

func (d *CatProfile) summary() map[string]interface{} {
	if s, ok := d.Data()["summary_simple"].(map[string]interface{}); ok {
		return s
	}
	return nil
}

func (d *CatProfile) summarySection(name string) map[string]interface{} {
	if s, ok := d.summary()[name].(map[string]interface{}); ok {
		return s
	}
	return nil
}

// Status is the vendor's health status description.
func (d *CatProfile) Status() string {
	s := d.summary()
	if v := cast.ToString(s["statusDescription"]); v != "" {
		return v
	}
	return cast.ToString(s["status"])
}

func (d *CatProfile) ToiletTimes() int {
	return cast.ToInt(d.summarySection("toilet")["times"])
}

func (d *CatProfile) ToiletWeightAvg() float64 {
	return cast.ToFloat64(d.summarySection("toilet")["weightAvg"])
}

func (d *CatProfile) PeeTimes() int {
	return cast.ToInt(d.summarySection("toilet")["peed"])
}

func (d *CatProfile) PooTimes() int {
	return cast.ToInt(d.summarySection("toilet")["pood"])
}

func (d *CatProfile) DrinkTimes() int {
	return cast.ToInt(d.summarySection("drink")["times"])
}

func (d *CatProfile) DietTimes() int {
	return cast.ToInt(d.summarySection("diet")["times"])
}

func (d *CatProfile) DietIntakes() float64 {
	return cast.ToFloat64(d.summarySection("diet")["intakes"])
}

func (d *CatProfile) SportActiveDuration() int {
	return cast.ToInt(d.summarySection("sport")["activeDuration"])
}
