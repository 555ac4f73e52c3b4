// Package validate checks the consistency of the game data files:
// the cats in cats.json and the abilities and status effects in abilities.json.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	CatsFile      = "cats.json"
	AbilitiesFile = "abilities.json"

	// Pairs of cats more similar than this are reported
	SimilarityThreshold = 0.8
)

var (
	requiredAbilityFields = []string{"name", "description", "effect"}
	requiredCatFields     = []string{"id", "name", "rarity", "description", "personality", "abilities", "stats", "role", "emoji"}
	requiredStatusFields  = []string{"name", "description", "effects", "duration"}
	requiredStats         = []string{"attack", "defense", "speed"}
	rarities              = []string{"common", "uncommon", "rare", "epic", "legendary"}
)

type object = map[string]any

type Data struct {
	Cats          []object
	Abilities     map[string]object
	StatusEffects map[string]object
}

// Load reads both data files of the directory
func Load(dir string) (*Data, error) {

	var cats struct {
		Cats []object `json:"cats"`
	}
	if err := readJSON(filepath.Join(dir, CatsFile), &cats); err != nil {
		return nil, err
	}
	var abilities struct {
		Abilities     map[string]object `json:"abilities"`
		StatusEffects map[string]object `json:"status_effects"`
	}
	if err := readJSON(filepath.Join(dir, AbilitiesFile), &abilities); err != nil {
		return nil, err
	}
	log.Debug().Int("cats", len(cats.Cats)).Int("abilities", len(abilities.Abilities)).Msg("Loaded game data")
	return &Data{Cats: cats.Cats, Abilities: abilities.Abilities, StatusEffects: abilities.StatusEffects}, nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return nil
}

type SimilarCats struct {
	Cat1           string
	Cat2           string
	NameSimilarity float64
	DescSimilarity float64
}

// Similarities are saved as percentages, e.g. "91.23%"
func (pair SimilarCats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cat1           string `json:"cat1"`
		Cat2           string `json:"cat2"`
		NameSimilarity string `json:"name_similarity"`
		DescSimilarity string `json:"desc_similarity"`
	}{pair.Cat1, pair.Cat2, percent(pair.NameSimilarity), percent(pair.DescSimilarity)})
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", 100*ratio)
}

// One kind of duplicates in the saved results
type duplicateGroup struct {
	Type       string `json:"type"`
	Duplicates any    `json:"duplicates"`
}

type DuplicateCats struct {
	// Cat id -> names of the cats sharing it
	Exact   map[string][]string
	Similar []SimilarCats
}

// Saved as a list of groups, one per kind of duplicate found
func (duplicates DuplicateCats) MarshalJSON() ([]byte, error) {
	groups := []duplicateGroup{}
	if len(duplicates.Exact) > 0 {
		groups = append(groups, duplicateGroup{Type: "exact", Duplicates: duplicates.Exact})
	}
	if len(duplicates.Similar) > 0 {
		groups = append(groups, duplicateGroup{Type: "similar", Duplicates: duplicates.Similar})
	}
	return json.Marshal(groups)
}

// Name of the first ability -> ids of the abilities sharing its signature
type AbilityDuplicates map[string][]string

func (duplicates AbilityDuplicates) MarshalJSON() ([]byte, error) {
	groups := []duplicateGroup{}
	if len(duplicates) > 0 {
		groups = append(groups, duplicateGroup{Type: "exact", Duplicates: map[string][]string(duplicates)})
	}
	return json.Marshal(groups)
}

type Results struct {
	MissingAbilities       []string          `json:"missing_abilities"`
	UnusedAbilities        []string          `json:"unused_abilities"`
	AbilityStructureErrors []string          `json:"ability_structure_errors"`
	CatValidationErrors    []string          `json:"cat_validation_errors"`
	DuplicateCats          DuplicateCats     `json:"duplicate_cats"`
	DuplicateAbilities     AbilityDuplicates `json:"duplicate_abilities"`
	StatusEffectErrors     []string          `json:"status_effect_errors"`
}

// Valid reports whether no check found anything
func (results Results) Valid() bool {
	return len(results.MissingAbilities) == 0 &&
		len(results.UnusedAbilities) == 0 &&
		len(results.AbilityStructureErrors) == 0 &&
		len(results.CatValidationErrors) == 0 &&
		len(results.DuplicateCats.Exact) == 0 &&
		len(results.DuplicateCats.Similar) == 0 &&
		len(results.DuplicateAbilities) == 0 &&
		len(results.StatusEffectErrors) == 0
}

// Check runs every validation over the data
func (data *Data) Check() Results {
	return Results{
		MissingAbilities:       data.MissingAbilities(),
		UnusedAbilities:        data.UnusedAbilities(),
		AbilityStructureErrors: data.AbilityStructureErrors(),
		CatValidationErrors:    data.CatValidationErrors(),
		DuplicateCats:          data.DuplicateCats(),
		DuplicateAbilities:     data.DuplicateAbilities(),
		StatusEffectErrors:     data.StatusEffectErrors(),
	}
}

func (data *Data) catAbilities() map[string]bool {
	used := map[string]bool{}
	for _, cat := range data.Cats {
		abilities, _ := cat["abilities"].([]any)
		for _, ability := range abilities {
			if id, ok := ability.(string); ok {
				used[id] = true
			}
		}
	}
	return used
}

// Abilities used by cats but not defined
func (data *Data) MissingAbilities() []string {
	missing := []string{}
	for id := range data.catAbilities() {
		if _, ok := data.Abilities[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

// Abilities defined but used by no cat
func (data *Data) UnusedAbilities() []string {
	used := data.catAbilities()
	unused := []string{}
	for id := range data.Abilities {
		if !used[id] {
			unused = append(unused, id)
		}
	}
	sort.Strings(unused)
	return unused
}

func missingFields(value object, required []string) []string {
	missing := []string{}
	for _, field := range required {
		if _, ok := value[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

func sortedKeys(values map[string]object) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (data *Data) AbilityStructureErrors() []string {
	errors := []string{}
	for _, id := range sortedKeys(data.Abilities) {
		ability := data.Abilities[id]
		if missing := missingFields(ability, requiredAbilityFields); len(missing) > 0 {
			errors = append(errors, fmt.Sprintf("Ability '%s' missing required fields: %s", id, strings.Join(missing, ", ")))
		}
		// An animation reads "start → middle → end"
		if animation, ok := ability["animation"]; ok {
			text, isText := animation.(string)
			if !isText || strings.Count(text, "→") != 2 {
				errors = append(errors, fmt.Sprintf("Ability '%s' has invalid animation format", id))
			}
		}
	}
	return errors
}

func catID(cat object) string {
	id, ok := cat["id"]
	if !ok {
		return "UNKNOWN"
	}
	return fmt.Sprint(id)
}

func (data *Data) CatValidationErrors() []string {
	errors := []string{}
	for _, cat := range data.Cats {
		id := catID(cat)
		if missing := missingFields(cat, requiredCatFields); len(missing) > 0 {
			errors = append(errors, fmt.Sprintf("Cat '%s' missing required fields: %s", id, strings.Join(missing, ", ")))
		}
		if rarity, _ := cat["rarity"].(string); !slices.Contains(rarities, rarity) {
			errors = append(errors, fmt.Sprintf("Cat '%s' has invalid rarity: %v", id, cat["rarity"]))
		}
		stats, _ := cat["stats"].(map[string]any)
		if len(missingFields(stats, requiredStats)) > 0 {
			errors = append(errors, fmt.Sprintf("Cat '%s' has invalid stats structure", id))
		}
	}
	return errors
}

func text(value object, field string) string {
	s, _ := value[field].(string)
	return s
}

func (data *Data) DuplicateCats() DuplicateCats {

	duplicates := DuplicateCats{}
	names := map[string][]string{}
	for _, cat := range data.Cats {
		id := catID(cat)
		names[id] = append(names[id], text(cat, "name"))
	}
	for id, catNames := range names {
		if len(catNames) > 1 {
			if duplicates.Exact == nil {
				duplicates.Exact = map[string][]string{}
			}
			duplicates.Exact[id] = catNames
		}
	}

	for i, cat1 := range data.Cats {
		for _, cat2 := range data.Cats[i+1:] {
			nameSimilarity := Similarity(text(cat1, "name"), text(cat2, "name"))
			descSimilarity := Similarity(text(cat1, "description"), text(cat2, "description"))
			if nameSimilarity > SimilarityThreshold || descSimilarity > SimilarityThreshold {
				duplicates.Similar = append(duplicates.Similar, SimilarCats{
					Cat1:           fmt.Sprintf("%s (%s)", catID(cat1), text(cat1, "name")),
					Cat2:           fmt.Sprintf("%s (%s)", catID(cat2), text(cat2, "name")),
					NameSimilarity: nameSimilarity,
					DescSimilarity: descSimilarity,
				})
			}
		}
	}
	return duplicates
}

// Abilities with the same damage multiplier, effect, duration and cooldown
func (data *Data) DuplicateAbilities() AbilityDuplicates {

	bySignature := map[string][]string{}
	signatures := []string{}
	for _, id := range sortedKeys(data.Abilities) {
		ability := data.Abilities[id]
		// Maps are encoded with sorted keys, so equal abilities give equal signatures
		encoded, err := json.Marshal(map[string]any{
			"damage_multiplier": ability["damage_multiplier"],
			"effect":            ability["effect"],
			"duration":          ability["duration"],
			"cooldown":          ability["cooldown"],
		})
		if err != nil {
			log.Warn().Err(err).Str("ability", id).Msg("Could not compute ability signature")
			continue
		}
		signature := string(encoded)
		if _, ok := bySignature[signature]; !ok {
			signatures = append(signatures, signature)
		}
		bySignature[signature] = append(bySignature[signature], id)
	}

	duplicates := AbilityDuplicates{}
	for _, signature := range signatures {
		ids := bySignature[signature]
		if len(ids) < 2 {
			continue
		}
		name := text(data.Abilities[ids[0]], "name")
		if name == "" {
			name = ids[0]
		}
		duplicates[name] = append(duplicates[name], ids...)
	}
	return duplicates
}

func empty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case float64:
		return v == 0
	case bool:
		return !v
	}
	return false
}

func (data *Data) StatusEffectErrors() []string {

	errors := []string{}
	referenced := map[string]bool{}
	for _, id := range sortedKeys(data.Abilities) {
		effect, _ := data.Abilities[id]["effect"].(map[string]any)
		for key, value := range effect {
			if !strings.Contains(strings.ToLower(key), "status") {
				continue
			}
			if status, ok := value.(string); ok {
				referenced[status] = true
			}
		}
	}
	missing := []string{}
	for status := range referenced {
		if _, ok := data.StatusEffects[status]; !ok {
			missing = append(missing, status)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		errors = append(errors, fmt.Sprintf("Missing status effect definitions: %s", strings.Join(missing, ", ")))
	}

	for _, id := range sortedKeys(data.StatusEffects) {
		status := data.StatusEffects[id]
		if missing := missingFields(status, requiredStatusFields); len(missing) > 0 {
			errors = append(errors, fmt.Sprintf("Status effect '%s' missing required fields: %s", id, strings.Join(missing, ", ")))
		}
		if effects, ok := status["effects"]; ok && empty(effects) {
			errors = append(errors, fmt.Sprintf("Status effect '%s' has empty effects", id))
		}
		if duration, ok := status["duration"].(float64); !ok || duration <= 0 {
			errors = append(errors, fmt.Sprintf("Status effect '%s' has invalid duration", id))
		}
	}
	return errors
}
