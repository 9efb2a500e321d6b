package csvsource

import (
	"bufio"
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/obs"
	"delivery-delay-service/internal/ports"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DirSource reads tables from "<name>.csv" files in one directory.
type DirSource struct {
	Dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Check verifies the directory exists and can be listed.
func (s *DirSource) Check() error {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return fmt.Errorf("data dir %q: %w", s.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %q: not a directory", s.Dir)
	}
	if _, err := os.ReadDir(s.Dir); err != nil {
		return fmt.Errorf("data dir %q: %w", s.Dir, err)
	}
	return nil
}

// Path returns the file backing a table.
func (s *DirSource) Path(name string) string {
	return filepath.Join(s.Dir, name+".csv")
}

func (s *DirSource) ReadTable(ctx context.Context, name string) (_ *ports.RawTable, err error) {
	defer obs.Time(ctx, "csv.ReadTable."+name)(&err)

	path := s.Path(name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read table %q: %w", path, domain.ErrSourceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", path, err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", path, err)
	}
	return table, nil
}

// ReadCSV parses a header row followed by records. Ragged rows are
// accepted; an empty input yields an empty table. A malformed record is
// skipped and counted in RawTable.Skipped; only an unparsable header is an
// error.
func ReadCSV(r io.Reader) (*ports.RawTable, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	out := &ports.RawTable{}
	headerSeen := false
	for i := 0; i < len(lines); {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}

		n := recordSpan(lines[i:])
		var (
			rec  []string
			perr error
		)
		if n > 0 {
			rec, perr = parseRecord(strings.Join(lines[i:i+n], "\n"))
		}
		if n == 0 || perr != nil {
			// Unbalanced quotes or a bad multi-line field: drop the first
			// physical line and resume on the next one.
			if !headerSeen {
				if perr == nil {
					perr = csv.ErrQuote
				}
				return nil, fmt.Errorf("parse header: %w", perr)
			}
			out.Skipped++
			i++
			continue
		}
		i += n

		if !headerSeen {
			out.Header = rec
			headerSeen = true
			continue
		}
		if isBlank(rec) {
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func readLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// recordSpan returns how many physical lines the record starting at
// lines[0] occupies, following quoted fields across line breaks. It returns
// 0 when the quotes never balance.
func recordSpan(lines []string) int {
	open := false
	for i, line := range lines {
		if strings.Count(line, `"`)%2 == 1 {
			open = !open
		}
		if !open {
			return i + 1
		}
	}
	return 0
}

func parseRecord(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rec, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if _, err := cr.Read(); !errors.Is(err, io.EOF) {
		return nil, csv.ErrQuote
	}
	return slices.Clone(rec), nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
