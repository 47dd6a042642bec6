package roster

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// LoadRoster reads the prepared roster file
func LoadRoster(path string) ([]models.RosterEntry, error) {
	return readFile(path, ReadRoster)
}

// LoadSalaries reads the salary pool file
func LoadSalaries(path string) (models.SalaryPool, error) {
	entries, err := readFile(path, ReadSalaries)
	if err != nil {
		return nil, err
	}
	return models.NewSalaryPool(entries), nil
}

// LoadDistributions reads a score table written by SaveSlate
func LoadDistributions(path string, roster []models.RosterEntry) ([]models.ScoreDistribution, error) {
	return readFile(path, func(r io.Reader) ([]models.ScoreDistribution, error) {
		return ReadDistributions(r, roster)
	})
}

// SaveSlate writes the summary and distribution files into dir
func SaveSlate(dir string, result *models.SlateResult) error {
	if err := writeFile(filepath.Join(dir, SummaryFile), func(w io.Writer) error {
		return WriteSummaries(w, result.Summaries)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, DistributionFile), func(w io.Writer) error {
		return WriteDistributions(w, result.Distributions)
	})
}

// SaveLineups writes the final lineup file into dir
func SaveLineups(dir string, set models.FinalLineupSet) error {
	return writeFile(filepath.Join(dir, LineupFile), func(w io.Writer) error {
		return WriteLineups(w, set)
	})
}
