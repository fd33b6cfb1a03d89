package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVar_Email(t *testing.T) {
	assert.NoError(t, Var("anna@example.com", "email"))
	assert.Error(t, Var("anna@", "email"))
	assert.Error(t, Var("Anna <anna@example.com>", "email"))
}

func TestVar_MaxCountsRunes(t *testing.T) {
	assert.NoError(t, Var("Анна", "max=4"))
	assert.Error(t, Var("Анна", "max=3"))
}

func TestStruct(t *testing.T) {
	type contact struct {
		Name  string `validate:"required"`
		Email string `validate:"omitempty,email"`
	}

	assert.Nil(t, Struct(contact{Name: "Anna"}))
	assert.Equal(t, map[string]string{"Name": "required", "Email": "email"}, Struct(contact{Email: "bad"}))
}
