package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationValidate_Valid(t *testing.T) {
	cases := []string{"APP1", "billing_v2", "X", "my_app_01"}
	for _, acronym := range cases {
		a := &Application{Acronym: acronym}
		assert.NoError(t, a.Validate(), "should accept %q", acronym)
	}
}

func TestApplicationValidate_BadAcronym(t *testing.T) {
	cases := []string{"", "has space", "dash-ed", "dots.app", "emoji✨"}
	for _, acronym := range cases {
		a := &Application{Acronym: acronym}
		err := a.Validate()
		require.Error(t, err, "should reject %q", acronym)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestApplicationValidate_NegativeRNumber(t *testing.T) {
	a := &Application{Acronym: "APP1", RNumber: -1}
	assert.ErrorIs(t, a.Validate(), ErrInvalidInput)
}

func TestPermitGroupsForStage(t *testing.T) {
	p := PermitGroups{Create: "pm", Open: "pm", Todo: "dev", Doing: "dev", Done: "lead"}
	assert.Equal(t, "pm", p.ForStage(StageCreate))
	assert.Equal(t, "pm", p.ForStage(StageOpen))
	assert.Equal(t, "dev", p.ForStage(StageTodo))
	assert.Equal(t, "dev", p.ForStage(StageDoing))
	assert.Equal(t, "lead", p.ForStage(StageDone))
	assert.Equal(t, "", p.ForStage(Stage("closed")))
}

func TestPermitGroupsNamed_SkipsUnset(t *testing.T) {
	p := PermitGroups{Create: "pm", Done: "lead"}
	assert.Equal(t, []string{"pm", "lead"}, p.Named())
	assert.Nil(t, PermitGroups{}.Named())
}

func TestValidateGroupName(t *testing.T) {
	require.NoError(t, ValidateGroupName("dev_team"))
	assert.ErrorIs(t, ValidateGroupName("abc"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateGroupName("bad name"), ErrInvalidInput)
}

func TestUserValidate(t *testing.T) {
	require.NoError(t, (&User{Username: "alice01"}).Validate())
	require.NoError(t, (&User{Username: "alice01", Email: "a@example.com"}).Validate())
	assert.ErrorIs(t, (&User{Username: "al"}).Validate(), ErrInvalidInput)
	assert.ErrorIs(t, (&User{Username: "alice01", Email: "not-an-email"}).Validate(), ErrInvalidInput)
}
