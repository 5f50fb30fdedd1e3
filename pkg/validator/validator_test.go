package validator

import (
	"testing"
	"time"

	"obrafin/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Nome   string `json:"nome" binding:"required"`
	Status string `json:"status" binding:"omitempty,oneof=ativo inativo"`
	Dia    int    `json:"diaPagamento" binding:"omitempty,min=1,max=31"`
	Data   string `json:"data" binding:"omitempty,isodate"`
}

func TestTranslate_UsesJSONNames(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&sample{Status: "x", Dia: 40, Data: "15/01/2024"})
	require.Error(t, err)

	fields := apperror.FieldsOf(Translate(err))
	assert.Equal(t, "is required", fields["nome"])
	assert.Equal(t, "must be one of: ativo, inativo", fields["status"])
	assert.Equal(t, "must be at most 31", fields["diaPagamento"])
	assert.Contains(t, fields["data"], "valid date")
}

func TestTranslate_ValidStruct(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&sample{Nome: "Pedro", Status: "ativo", Dia: 5, Data: "2024-01-15"})
	assert.NoError(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-01-15T10:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC), d)

	_, err = ParseDate("ontem")
	assert.Error(t, err)

	assert.True(t, IsBareDate("2024-01-15"))
	assert.False(t, IsBareDate("2024-01-15T10:30:00Z"))
}
