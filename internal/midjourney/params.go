package midjourney

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	AspectRatios   = []string{"1:1", "16:9", "2:3", "4:3", "3:2", "2:1", "1:2"}
	QualityValues  = []string{".25", ".5", "1"}
	ModelVersions  = []string{"5.0", "5.1", "5.2", "niji", "turbo"}
	seedPattern    = regexp.MustCompile(`^\d{1,10}$`)
	DefaultModel   = "5.2"
	DefaultMaxJobs = 3
)

// Params are the generation options given after the prompt, as in
// "a forest --ar 16:9 --stylize 600"
type Params struct {
	Aspect  string `json:"aspect,omitempty"`
	Stylize *int   `json:"stylize,omitempty"`
	Chaos   *int   `json:"chaos,omitempty"`
	Quality string `json:"quality,omitempty"`
	Seed    string `json:"seed,omitempty"`
	Version string `json:"version,omitempty"`
	NoStyle bool   `json:"no_style,omitempty"`
}

// ParseImagine splits the input of the imagine command into the prompt and
// its validated parameters. The default model applies when no version is given
func ParseImagine(input string, defaultModel string) (string, Params, error) {

	params := Params{}
	words := []string{}
	fields := strings.Fields(input)
	for i := 0; i < len(fields); i++ {
		field := fields[i]
		if !strings.HasPrefix(field, "--") {
			words = append(words, field)
			continue
		}
		flag := strings.ToLower(strings.TrimPrefix(field, "--"))
		if flag == "no-style" || flag == "nostyle" {
			params.NoStyle = true
			continue
		}
		if i+1 >= len(fields) {
			return "", params, fmt.Errorf("missing value for --%s", flag)
		}
		i++
		if err := params.set(flag, fields[i]); err != nil {
			return "", params, err
		}
	}

	prompt := strings.Join(words, " ")
	if prompt == "" {
		return "", params, fmt.Errorf("the prompt cannot be empty")
	}
	if params.Version == "" {
		params.Version = defaultModel
	}
	if !slices.Contains(ModelVersions, params.Version) {
		return "", params, fmt.Errorf("invalid version. Available options: %s", strings.Join(ModelVersions, ", "))
	}
	return prompt, params, nil
}

func (params *Params) set(flag string, value string) error {
	switch flag {
	case "ar", "aspect":
		if !slices.Contains(AspectRatios, value) {
			return fmt.Errorf("invalid aspect ratio. Available options: %s", strings.Join(AspectRatios, ", "))
		}
		params.Aspect = value
	case "stylize", "s":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 1000 {
			return fmt.Errorf("stylize value must be between 0 and 1000")
		}
		params.Stylize = &n
	case "chaos", "c":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 100 {
			return fmt.Errorf("chaos value must be between 0 and 100")
		}
		params.Chaos = &n
	case "quality", "q":
		if !slices.Contains(QualityValues, value) {
			return fmt.Errorf("quality must be .25, .5, or 1")
		}
		params.Quality = value
	case "seed":
		if !seedPattern.MatchString(value) {
			return fmt.Errorf("invalid seed number. Must be a number between 0-9999999999")
		}
		params.Seed = value
	case "version", "v":
		params.Version = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown parameter --%s", flag)
	}
	return nil
}

// Suffix renders the parameters the way MidJourney reads them
func (params Params) Suffix() string {
	parts := []string{}
	if params.Aspect != "" {
		parts = append(parts, "--ar "+params.Aspect)
	}
	if params.Stylize != nil {
		parts = append(parts, fmt.Sprintf("--stylize %d", *params.Stylize))
	}
	if params.Chaos != nil {
		parts = append(parts, fmt.Sprintf("--chaos %d", *params.Chaos))
	}
	if params.Quality != "" {
		parts = append(parts, "--q "+params.Quality)
	}
	if params.Seed != "" {
		parts = append(parts, "--seed "+params.Seed)
	}
	switch params.Version {
	case "":
	case "niji":
		parts = append(parts, "--niji 5")
	case "turbo":
		parts = append(parts, "--turbo")
	default:
		parts = append(parts, "--v "+params.Version)
	}
	if params.NoStyle {
		parts = append(parts, "--style raw")
	}
	return strings.Join(parts, " ")
}

// Lines describing the parameters in an embed
func (params Params) Lines() []string {
	lines := []string{}
	if params.Aspect != "" {
		lines = append(lines, "📐 Aspect: "+params.Aspect)
	}
	if params.Stylize != nil {
		lines = append(lines, fmt.Sprintf("🖌️ Style: %d", *params.Stylize))
	}
	if params.Chaos != nil {
		lines = append(lines, fmt.Sprintf("🌀 Chaos: %d", *params.Chaos))
	}
	if params.Quality != "" {
		lines = append(lines, "💎 Quality: "+params.Quality)
	}
	if params.Seed != "" {
		lines = append(lines, "🎲 Seed: "+params.Seed)
	}
	if params.Version != "" {
		lines = append(lines, "📦 Model: "+params.Version)
	}
	if params.NoStyle {
		lines = append(lines, "🚫 No style")
	}
	return lines
}
