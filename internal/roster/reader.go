package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

var (
	// ErrMissingColumn is returned when a required header is absent
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedRow is returned for a row whose values cannot be parsed
	ErrMalformedRow = errors.New("malformed row")
)

// Accepted header spellings, compared case-insensitively
var (
	pairingColumns  = []string{"MatchID", "PairingID", "Match"}
	playerColumns   = []string{"Player", "Name"}
	opponentColumns = []string{"Opponent"}
	salaryColumns   = []string{"Salary"}
)

type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h
}

// find returns the index of the first alias present
func (h header) find(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := h[strings.ToLower(a)]; ok {
			return i, true
		}
	}
	return 0, false
}

func (h header) require(aliases ...string) (int, error) {
	i, ok := h.find(aliases...)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumn, aliases[0])
	}
	return i, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadRoster parses the prepared match roster. Every metric column is required;
// unknown columns are ignored.
func ReadRoster(r io.Reader) ([]models.RosterEntry, error) {
	cr := newReader(r)
	first, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roster header: %w", err)
	}

	h := newHeader(first)
	pairingCol, err := h.require(pairingColumns...)
	if err != nil {
		return nil, err
	}
	playerCol, err := h.require(playerColumns...)
	if err != nil {
		return nil, err
	}
	opponentCol, hasOpponent := h.find(opponentColumns...)

	metrics := models.AllMetrics()
	metricCols := make([]int, len(metrics))
	for j, m := range metrics {
		if metricCols[j], err = h.require(m.String()); err != nil {
			return nil, err
		}
	}

	var entries []models.RosterEntry
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roster line %d: %w", line, err)
		}

		entry := models.RosterEntry{
			PairingID: field(row, pairingCol),
			Name:      field(row, playerCol),
		}
		if hasOpponent {
			entry.Opponent = field(row, opponentCol)
		}
		for j, m := range metrics {
			v, err := strconv.ParseFloat(field(row, metricCols[j]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedRow, line, m, err)
			}
			entry.Metrics = entry.Metrics.With(m, v)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadSalaries parses the salary pool. Salaries written as decimals are rounded.
func ReadSalaries(r io.Reader) ([]models.SalaryEntry, error) {
	cr := newReader(r)
	first, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read salary header: %w", err)
	}

	h := newHeader(first)
	nameCol, err := h.require(playerColumns...)
	if err != nil {
		return nil, err
	}
	salaryCol, err := h.require(salaryColumns...)
	if err != nil {
		return nil, err
	}

	var entries []models.SalaryEntry
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read salary line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(field(row, salaryCol), 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%w: line %d salary %q", ErrMalformedRow, line, field(row, salaryCol))
		}
		entries = append(entries, models.SalaryEntry{
			Name:   field(row, nameCol),
			Salary: int(math.Round(v)),
		})
	}
	return entries, nil
}

// ReadDistributions parses the per-trial score table written by WriteDistributions.
// Pairing ids are restored from the roster; a column naming a competitor outside
// the roster is an error.
func ReadDistributions(r io.Reader, roster []models.RosterEntry) ([]models.ScoreDistribution, error) {
	pairingOf := make(map[string]string, len(roster))
	for _, e := range roster {
		pairingOf[e.Name] = e.PairingID
	}

	cr := newReader(r)
	first, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read distribution header: %w", err)
	}

	dists := make([]models.ScoreDistribution, len(first))
	for i, name := range first {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		id, ok := pairingOf[name]
		if !ok {
			return nil, fmt.Errorf("%w: competitor %q is not on the roster", ErrMalformedRow, name)
		}
		dists[i] = models.ScoreDistribution{PairingID: id, Competitor: name}
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read distribution line %d: %w", line, err)
		}
		if len(row) != len(dists) {
			return nil, fmt.Errorf("%w: line %d has %d values, expected %d", ErrMalformedRow, line, len(row), len(dists))
		}
		for i := range dists {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedRow, line, dists[i].Competitor, err)
			}
			dists[i].Scores = append(dists[i].Scores, v)
		}
	}
	return dists, nil
}
