package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// Save writes the results as validation_results_<timestamp>_<n>.json in dir,
// n being the first number not taken yet
func Save(results Results, dir string, now time.Time) (string, error) {

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}
	encoded, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return "", err
	}

	timestamp := now.Format("20060102_150405")
	for number := 1; ; number++ {
		path := filepath.Join(dir, fmt.Sprintf("validation_results_%s_%d.json", timestamp, number))
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return "", fmt.Errorf("write results: %w", err)
		}
		return path, nil
	}
}

func section(out io.Writer, title string, ok string, lines []string) {
	if len(lines) == 0 {
		fmt.Fprintf(out, "✅ %s\n", ok)
		return
	}
	fmt.Fprintf(out, "\n❌ %s:\n", title)
	for _, line := range lines {
		fmt.Fprintf(out, "  - %s\n", line)
	}
}

// Print the human readable report
func Print(out io.Writer, results Results, dataDir string, resultsFile string) {

	fmt.Fprint(out, "\n=== Data Validation Results ===\n\n")
	fmt.Fprintf(out, "Data Path: %s\n", dataDir)
	fmt.Fprintf(out, "Results saved to: %s\n\n", resultsFile)

	section(out, "Missing Ability Definitions", "All cat abilities are properly defined", results.MissingAbilities)
	section(out, "Unused Ability Definitions", "All defined abilities are used by cats", results.UnusedAbilities)
	section(out, "Ability Structure Errors", "All ability definitions are properly structured", results.AbilityStructureErrors)
	section(out, "Cat Validation Errors", "All cat definitions are properly structured", results.CatValidationErrors)

	duplicates := []string{}
	ids := make([]string, 0, len(results.DuplicateCats.Exact))
	for id := range results.DuplicateCats.Exact {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		duplicates = append(duplicates, fmt.Sprintf("Exact duplicate ID '%s' used by: %v", id, results.DuplicateCats.Exact[id]))
	}
	for _, pair := range results.DuplicateCats.Similar {
		duplicates = append(duplicates, fmt.Sprintf("Similar cats: %s and %s (name %.2f%%, description %.2f%%)",
			pair.Cat1, pair.Cat2, 100*pair.NameSimilarity, 100*pair.DescSimilarity))
	}
	section(out, "Duplicate/Similar Cats Found", "No duplicate cats found", duplicates)

	abilities := []string{}
	names := make([]string, 0, len(results.DuplicateAbilities))
	for name := range results.DuplicateAbilities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		abilities = append(abilities, fmt.Sprintf("'%s' shares its signature with: %v", name, results.DuplicateAbilities[name]))
	}
	section(out, "Duplicate Abilities Found", "No duplicate abilities found", abilities)
	section(out, "Status Effect Validation Errors", "All status effects are properly defined and referenced", results.StatusEffectErrors)

	overall := "✅ PASSED"
	if !results.Valid() {
		overall = "❌ FAILED"
	}
	fmt.Fprintf(out, "\nOverall Validation: %s\n", overall)
}

// Run validates the data directory, saves the results and prints the report.
// Returns whether the data is valid
func Run(out io.Writer, dataDir string, resultsDir string, now time.Time) (bool, error) {

	data, err := Load(dataDir)
	if err != nil {
		return false, err
	}
	results := data.Check()
	path, err := Save(results, resultsDir, now)
	if err != nil {
		return false, err
	}
	log.Info().Str("file", path).Bool("valid", results.Valid()).Msg("Validation finished")
	Print(out, results, dataDir, path)
	return results.Valid(), nil
}
