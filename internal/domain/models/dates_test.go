package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("21/08/2025")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.August, Day: 21}, d)
	assert.Equal(t, "21/08/2025", d.String())
	assert.Equal(t, "2025-08-21", d.ISO())

	for _, bad := range []string{"", "2025-08-21", "32/01/2025", "1/8/2025", "21/13/2025"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseMonthYear(t *testing.T) {
	m, err := ParseMonthYear("08/2025")
	require.NoError(t, err)
	assert.Equal(t, MonthYear{Year: 2025, Month: time.August}, m)
	assert.Equal(t, "08/2025", m.String())
	assert.Equal(t, "2025-08", m.Key())

	for _, bad := range []string{"", "8/2025", "13/2025", "08-2025", "08/25", "2025-08"} {
		_, err := ParseMonthYear(bad)
		assert.Error(t, err, bad)
	}
}

func TestMonthYearContainsIgnoresDay(t *testing.T) {
	m := MonthYear{Year: 2025, Month: time.August}
	loc := time.FixedZone("BRT", -3*3600)

	assert.True(t, m.Contains(time.Date(2025, time.August, 1, 0, 0, 0, 0, loc)))
	assert.True(t, m.Contains(time.Date(2025, time.August, 31, 23, 59, 0, 0, loc)))
	assert.False(t, m.Contains(time.Date(2025, time.September, 1, 0, 0, 0, 0, loc)))
	assert.False(t, m.Contains(time.Date(2024, time.August, 15, 0, 0, 0, 0, loc)))
}

func TestMonthYearPrevious(t *testing.T) {
	assert.Equal(t, MonthYear{Year: 2024, Month: time.December}, MonthYear{Year: 2025, Month: time.January}.Previous())
	assert.Equal(t, MonthYear{Year: 2025, Month: time.July}, MonthYear{Year: 2025, Month: time.August}.Previous())
}

func TestConditionLabels(t *testing.T) {
	assert.Equal(t, "Atenção!", ConditionWarn.Label())
	assert.Equal(t, "Trocar Ferramenta (TF)", ConditionReplace.Label())
	assert.False(t, ConditionOK.Warning())
	assert.True(t, ConditionReplace.Warning())
}
