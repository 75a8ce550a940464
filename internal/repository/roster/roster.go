package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtroode/gatekeeper/internal/model"
)

// Required header columns. Matching is case-insensitive.
const (
	columnFirstName = "firstname"
	columnBranch    = "branch"
	columnPhone     = "phone"
)

var _ model.Roster = (*Store)(nil)

// Store is an immutable roster indexed by lowercase first name.
type Store struct {
	byName  map[string][]model.RosterEntry
	size    int
	skipped int
}

// LoadFile reads a roster CSV from path.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open roster %s: %v", model.ErrDataLoad, path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses a roster CSV with a header row. Rows with missing required
// fields are skipped; a missing header column fails the whole load.
func Load(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: roster is empty", model.ErrDataLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read roster header: %v", model.ErrDataLoad, err)
	}

	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	s := &Store{byName: make(map[string][]model.RosterEntry)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read roster row: %v", model.ErrDataLoad, err)
		}

		entry, ok := parseRecord(record, idx)
		if !ok {
			s.skipped++
			continue
		}

		s.byName[entry.FirstName] = append(s.byName[entry.FirstName], entry)
		s.size++
	}

	return s, nil
}

type columns struct {
	firstName, branch, phone int
}

func indexHeader(header []string) (columns, error) {
	idx := columns{firstName: -1, branch: -1, phone: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case columnFirstName:
			idx.firstName = i
		case columnBranch:
			idx.branch = i
		case columnPhone:
			idx.phone = i
		}
	}

	var missing []string
	if idx.firstName < 0 {
		missing = append(missing, columnFirstName)
	}
	if idx.branch < 0 {
		missing = append(missing, columnBranch)
	}
	if idx.phone < 0 {
		missing = append(missing, columnPhone)
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: roster header is missing %s", model.ErrDataLoad, strings.Join(missing, ", "))
	}

	return idx, nil
}

func parseRecord(record []string, idx columns) (model.RosterEntry, bool) {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	entry := model.RosterEntry{
		FirstName: model.NormalizeName(field(idx.firstName)),
		Branch:    model.NormalizeBranch(field(idx.branch)),
		Phone:     model.NormalizePhone(field(idx.phone)),
	}
	if entry.FirstName == "" || entry.Branch == "" || entry.Phone == "" {
		return model.RosterEntry{}, false
	}

	return entry, true
}

// FindByName returns every entry whose first name matches, ignoring case.
func (s *Store) FindByName(name string) []model.RosterEntry {
	return s.byName[model.NormalizeName(name)]
}

// Len returns the number of loaded entries.
func (s *Store) Len() int {
	return s.size
}

// Skipped returns the number of rows dropped during load.
func (s *Store) Skipped() int {
	return s.skipped
}
