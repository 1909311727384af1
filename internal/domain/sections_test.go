package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsLookup(t *testing.T) {
	fields := Fields{
		{Label: "Date du prélèvement", Value: "12/05/2024"},
		{Label: "Commune de prélèvement", Value: "CORMEILLES-EN-PARISIS"},
		{Label: "Nom de la commune", Value: "LA FRETTE-SUR-SEINE"},
	}

	t.Run("accent-insensitive substring match", func(t *testing.T) {
		v, ok := fields.Lookup("date du prelevement")
		require.True(t, ok)
		assert.Equal(t, "12/05/2024", v)
	})

	t.Run("first matching row wins", func(t *testing.T) {
		// Both commune rows contain "commune"; document order decides.
		v, ok := fields.Lookup("commune")
		require.True(t, ok)
		assert.Equal(t, "CORMEILLES-EN-PARISIS", v)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := fields.Lookup("installation")
		assert.False(t, ok)
	})

	t.Run("empty fragment never matches", func(t *testing.T) {
		_, ok := fields.Lookup("")
		assert.False(t, ok)
	})
}

func TestParsedSectionsSampleDate(t *testing.T) {
	t.Run("specific label preferred", func(t *testing.T) {
		s := ParsedSections{GeneralInfo: Fields{
			{Label: "Heure du prélèvement", Value: "14h30"},
			{Label: "Date du prélèvement", Value: "12/05/2024 14h30"},
		}}
		got, ok := s.SampleDate()
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 5, 12, 14, 30, 0, 0, time.UTC), got)
	})

	t.Run("falls back to any prélèvement label", func(t *testing.T) {
		s := ParsedSections{GeneralInfo: Fields{
			{Label: "Prélèvement effectué le", Value: "12/05/2024"},
		}}
		got, ok := s.SampleDate()
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("unparseable value", func(t *testing.T) {
		s := ParsedSections{GeneralInfo: Fields{
			{Label: "Date du prélèvement", Value: "inconnue"},
		}}
		_, ok := s.SampleDate()
		assert.False(t, ok)
	})

	t.Run("missing section", func(t *testing.T) {
		_, ok := ParsedSections{}.SampleDate()
		assert.False(t, ok)
	})
}
