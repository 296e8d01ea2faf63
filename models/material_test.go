package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMaterialStatus(t *testing.T) {
	valid := []string{"active", "inactive", "discontinued"}
	for _, s := range valid {
		assert.True(t, IsValidMaterialStatus(s), "%s should be a valid material status", s)
	}

	invalid := []string{"", "archived", "ACTIVE"}
	for _, s := range invalid {
		assert.False(t, IsValidMaterialStatus(s), "%s should not be a valid material status", s)
	}
}
