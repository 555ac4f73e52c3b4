package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	result := Parse("!", `!Create_Event "Game night" 2030-01-01 19:30`)
	assert.Equal(t, PARSEID_OK, result.parseid)
	assert.Equal(t, "create_event", result.command)
	assert.Equal(t, []string{"Game night", "2030-01-01", "19:30"}, result.arguments)
	assert.Equal(t, `"Game night" 2030-01-01 19:30`, result.rest)

	result = Parse("!", "!help")
	assert.Equal(t, PARSEID_OK, result.parseid)
	assert.Equal(t, "help", result.command)
	assert.Empty(t, result.arguments)
}

func TestParse_Rejected(t *testing.T) {
	assert.Equal(t, PARSEID_NO_BOT_PREFIX, Parse("!", "hello there").parseid)

	result := Parse("!", "!   ")
	assert.Equal(t, PARSEID_NO_COMMAND, result.parseid)
	assert.Equal(t, "No command provided", result.errorMessage)

	result = Parse("!", `!imagine "a cat`)
	assert.Equal(t, PARSEID_UNBALANCED_QUOTES, result.parseid)
	assert.Equal(t, "Quotes in `\"a cat` are not balanced", result.errorMessage)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"  one   two ", []string{"one", "two"}},
		{`"two words" three`, []string{"two words", "three"}},
		{`description="a long text" repeat=daily`, []string{"description=a long text", "repeat=daily"}},
		{`""`, []string{""}},
	}
	for _, test := range tests {
		tokens, ok := Tokenize(test.input)
		assert.True(t, ok, test.input)
		assert.Equal(t, test.expected, tokens, test.input)
	}

	_, ok := Tokenize(`"open`)
	assert.False(t, ok)
}

func TestKeyValues(t *testing.T) {
	values, positional := KeyValues([]string{"Date=2030-01-01", "extra", " Repeat = weekly"})
	assert.Equal(t, map[string]string{"date": "2030-01-01", "repeat": "weekly"}, values)
	assert.Equal(t, []string{"extra"}, positional)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "ñññ...", Truncate("ññññññññ", 6))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░ 0%", ProgressBar(0))
	assert.Equal(t, "███░░░░░░░ 33%", ProgressBar(33))
	assert.Equal(t, "██████████ 100%", ProgressBar(250))
	assert.Equal(t, "░░░░░░░░░░ 0%", ProgressBar(-5))
}

func TestBox(t *testing.T) {
	assert.Equal(t, "```\nhi\n```", Box("hi", ""))
	assert.Equal(t, "```json\n{}\n```", Box("{}", "json"))
}

func TestJumpURL(t *testing.T) {
	assert.Equal(t, "https://discord.com/channels/1/2/3", JumpURL("1", "2", "3"))
	assert.Equal(t, "https://discord.com/channels/@me/2/3", JumpURL("", "2", "3"))
}

func TestSnowflakeLess(t *testing.T) {
	assert.True(t, SnowflakeLess("99", "100"))
	assert.True(t, SnowflakeLess("100", "101"))
	assert.False(t, SnowflakeLess("101", "101"))
	assert.False(t, SnowflakeLess("1000", "999"))
}
