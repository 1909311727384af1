package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMunicipalityDepartment(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"standard network code", "095000386_095", "095"},
		{"exactly three chars", "095", "095"},
		{"too short", "95", ""},
		{"empty", "", ""},
		{"surrounding whitespace", "  095000386_095  ", "095"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Municipality{WaterCode: tt.code}
			assert.Equal(t, tt.expected, m.Department())
		})
	}
}

func TestMunicipalityLabel(t *testing.T) {
	tests := []struct {
		name     string
		m        Municipality
		expected string
	}{
		{"name preferred", Municipality{Name: "Cormeilles-en-Parisis", CommuneCode: "95176", WaterCode: "095000386_095"}, "Cormeilles-en-Parisis"},
		{"insee fallback", Municipality{CommuneCode: "95176", WaterCode: "095000386_095"}, "95176"},
		{"water code last resort", Municipality{WaterCode: "095000386_095"}, "095000386_095"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.m.Label())
		})
	}
}

func TestBuildSearchPayload(t *testing.T) {
	m := Municipality{
		Name:        "Cormeilles-en-Parisis",
		WaterCode:   " 095000386_095 ",
		CommuneCode: " 95176 ",
	}
	d := SearchDefaults{RegionID: "11", Usage: "AEP", Position: "0"}

	p := BuildSearchPayload(m, d)

	assert.Equal(t, "rechercher", p.Methode)
	assert.Equal(t, "11", p.RegionID)
	assert.Equal(t, "AEP", p.Usage)
	assert.Equal(t, "0", p.Position)
	assert.Equal(t, "095", p.Departement)
	assert.Equal(t, "95176", p.Commune)
	assert.Equal(t, "095000386_095", p.Reseau)
}

func TestSearchPayloadValues(t *testing.T) {
	p := BuildSearchPayload(
		Municipality{WaterCode: "095000386_095", CommuneCode: "95176"},
		SearchDefaults{RegionID: "11", Usage: "AEP", Position: "0"},
	)

	v := p.Values()

	// The registry matches on exact form field names.
	assert.Equal(t, "rechercher", v.Get("methode"))
	assert.Equal(t, "11", v.Get("idRegion"))
	assert.Equal(t, "AEP", v.Get("usd"))
	assert.Equal(t, "0", v.Get("posPLV"))
	assert.Equal(t, "095", v.Get("departement"))
	assert.Equal(t, "95176", v.Get("communeDepartement"))
	assert.Equal(t, "095000386_095", v.Get("reseau"))
	assert.Len(t, v, 7)
}
