package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "only whitespace", input: " \t\n ", expected: ""},
		{name: "already clean", input: "Ana Souza", expected: "Ana Souza"},
		{name: "trims and collapses", input: "  João   Silva  ", expected: "João Silva"},
		{name: "tabs and newlines", input: "Maria\t\nda  Silva", expected: "Maria da Silva"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CollapseSpace(tt.input))
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "5511991234567", DigitsOnly("+55 (11) 99123-4567"))
	assert.Equal(t, "", DigitsOnly("abc"))
	assert.Equal(t, "2", DigitsOnly("１2"), "full-width digits are not ASCII")
}

func TestLowerSet(t *testing.T) {
	set := LowerSet("  TempMail.com ", "tempmail.com", "", "Mailinator.com")

	assert.Len(t, set, 2)
	assert.Contains(t, set, "tempmail.com")
	assert.Contains(t, set, "mailinator.com")
}

func TestHasLetter(t *testing.T) {
	assert.True(t, HasLetter("'-é"))
	assert.False(t, HasLetter("' - '"))
}
