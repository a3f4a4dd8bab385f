package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendUnique(t *testing.T) {
	got := AppendUnique([]string{"a", "b"}, "b", "c", "", "a", "d", "c")
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assert.Nil(t, AppendUnique(nil))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 10))
	assert.Equal(t, "日本", TruncateRunes("日本語", 2))
	assert.Equal(t, "", TruncateRunes("abc", 0))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpaces("  a \n\t b   c "))
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced", "```json\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"prose around", "Sure! Here it is: {\"title\":\"x\"} Hope that helps.", `{"title":"x"}`},
		{"array", "[1,2]", "[1,2]"},
		{"no json", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONResponse(tt.in))
		})
	}
}

func TestContainsString(t *testing.T) {
	assert.True(t, ContainsString([]string{"x", "y"}, "y"))
	assert.False(t, ContainsString(nil, "y"))
}
