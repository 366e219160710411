package source

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// readDelimited reads a CSV or TSV file. The delimiter is sniffed from the
// header line unless tab is forced.
func readDelimited(path string, tab bool) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := br.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}

	delim := ','
	if tab {
		delim = '\t'
	} else {
		// Short files return io.EOF alongside the bytes they have.
		first, _ := br.Peek(4096)
		delim = sniffDelimiter(string(first))
	}

	return ReadCSV(br, delim)
}

// ReadCSV parses delimited text from r. The first non-blank record is the header.
func ReadCSV(r io.Reader, delim rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited: %w", err)
	}
	return splitHeader(rows)
}

// sniffDelimiter picks the most frequent of comma, tab, semicolon, and pipe
// on the first line. Ties go to comma.
func sniffDelimiter(sample string) rune {
	if i := strings.IndexAny(sample, "\r\n"); i >= 0 {
		sample = sample[:i]
	}
	best, bestN := ',', strings.Count(sample, ",")
	for _, d := range []rune{'\t', ';', '|'} {
		if n := strings.Count(sample, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
