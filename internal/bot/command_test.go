package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		data string
		name string
		args []string
	}{
		{"menu", "menu", nil},
		{"claim|42", "claim", []string{"42"}},
		{"bsel|active", "bsel", []string{"active"}},
		{"aban|550e8400-e29b-41d4-a716-446655440000", "aban", []string{"550e8400-e29b-41d4-a716-446655440000"}},
		{"", "", nil},
	}
	for _, tt := range tests {
		cmd := parseCommand(tt.data)
		assert.Equal(t, tt.name, cmd.Name, "data=%q", tt.data)
		if len(tt.args) == 0 {
			assert.Empty(t, cmd.Args)
		} else {
			assert.Equal(t, tt.args, cmd.Args)
		}
	}
}

func TestCommandArgs(t *testing.T) {
	cmd := parseCommand("claim|42")
	assert.Equal(t, "42", cmd.Arg(0))
	assert.Equal(t, int64(42), cmd.Int64Arg(0))

	// Missing args degrade to zero values instead of panicking.
	assert.Equal(t, "", cmd.Arg(5))
	assert.Zero(t, cmd.Int64Arg(5))

	assert.Zero(t, parseCommand("claim|notanumber").Int64Arg(0))
}
