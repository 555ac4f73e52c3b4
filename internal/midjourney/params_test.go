package midjourney

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImagine(t *testing.T) {
	prompt, params, err := ParseImagine("a misty forest --ar 16:9 --stylize 600 --chaos 20 --q .5 --seed 42 --v niji --no-style", DefaultModel)
	require.NoError(t, err)

	assert.Equal(t, "a misty forest", prompt)
	assert.Equal(t, "16:9", params.Aspect)
	require.NotNil(t, params.Stylize)
	assert.Equal(t, 600, *params.Stylize)
	require.NotNil(t, params.Chaos)
	assert.Equal(t, 20, *params.Chaos)
	assert.Equal(t, ".5", params.Quality)
	assert.Equal(t, "42", params.Seed)
	assert.Equal(t, "niji", params.Version)
	assert.True(t, params.NoStyle)
	assert.Equal(t, "--ar 16:9 --stylize 600 --chaos 20 --q .5 --seed 42 --niji 5 --style raw", params.Suffix())
}

func TestParseImagine_DefaultModel(t *testing.T) {
	_, params, err := ParseImagine("a cat", "turbo")
	require.NoError(t, err)
	assert.Equal(t, "turbo", params.Version)
	assert.Equal(t, "--turbo", params.Suffix())

	_, params, err = ParseImagine("a cat --version 5.1", "turbo")
	require.NoError(t, err)
	assert.Equal(t, "--v 5.1", params.Suffix())
}

func TestParseImagine_Errors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"a cat --ar 5:4", "invalid aspect ratio"},
		{"a cat --stylize 1001", "stylize value must be between 0 and 1000"},
		{"a cat --stylize lots", "stylize value must be between 0 and 1000"},
		{"a cat --chaos -1", "chaos value must be between 0 and 100"},
		{"a cat --quality 2", "quality must be .25, .5, or 1"},
		{"a cat --seed 12345678901", "invalid seed number"},
		{"a cat --seed abc", "invalid seed number"},
		{"a cat --v 4", "invalid version"},
		{"a cat --weird 1", "unknown parameter --weird"},
		{"a cat --ar", "missing value for --ar"},
		{"--ar 1:1", "the prompt cannot be empty"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, _, err := ParseImagine(test.input, DefaultModel)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.err)
		})
	}
}

func TestParams_Lines(t *testing.T) {
	stylize := 100
	params := Params{Aspect: "1:1", Stylize: &stylize, Version: "5.2"}
	assert.Equal(t, []string{"📐 Aspect: 1:1", "🖌️ Style: 100", "📦 Model: 5.2"}, params.Lines())
	assert.Empty(t, Params{}.Lines())
	assert.Equal(t, "", Params{}.Suffix())
}
