package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestGenaiRole(t *testing.T) {
	var user genai.Role = genaiRole("user")
	assert.Equal(t, genai.Role(genai.RoleUser), user)

	assert.Equal(t, genai.Role(genai.RoleModel), genaiRole("assistant"))
	assert.Equal(t, genai.Role(genai.RoleModel), genaiRole("model"))

	// Unknown roles fall back to user input.
	assert.Equal(t, genai.Role(genai.RoleUser), genaiRole("system"))
	assert.Equal(t, genai.Role(genai.RoleUser), genaiRole(""))
}
