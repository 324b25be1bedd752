package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	p := Normalize(&Profile{
		UserID:          " 42 ",
		PreferredMethod: "SMS",
		PhoneNumber:     " +61412345678 ",
		Email:           "  ",
	})

	require.NotNil(t, p)
	assert.Equal(t, "42", p.UserID)
	assert.Equal(t, MethodSMS, p.PreferredMethod)
	assert.Equal(t, "+61412345678", p.PhoneNumber)
	assert.False(t, p.HasEmail())
	assert.Equal(t, DefaultDailyGoalMl, p.DailyGoalMl)
}

func TestNormalizeUnknownMethodBecomesNone(t *testing.T) {
	p := Normalize(&Profile{PreferredMethod: "pigeon", DailyGoalMl: 2500})

	assert.Equal(t, MethodNone, p.PreferredMethod)
	assert.Equal(t, 2500, p.DailyGoalMl)
}

func TestNormalizeNil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod(" WhatsApp ")
	assert.True(t, ok)
	assert.Equal(t, MethodWhatsApp, m)

	m, ok = ParseMethod("")
	assert.True(t, ok)
	assert.Equal(t, MethodNone, m)

	_, ok = ParseMethod("fax")
	assert.False(t, ok)
}

func TestNewHasDefaults(t *testing.T) {
	p := New("7")
	assert.Equal(t, "7", p.UserID)
	assert.False(t, p.RemindersEnabled)
	assert.Equal(t, MethodNone, p.PreferredMethod)
	assert.Equal(t, DefaultDailyGoalMl, p.DailyGoalMl)
}
