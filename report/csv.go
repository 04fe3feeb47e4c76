package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/BaSui01/tokenbench/experiment"
)

// Columns is the fixed header of the detailed CSV.
var Columns = []string{
	"sentence",
	"lang",
	"tokenizer",
	"count",
	"char_count",
	"overhead_pct",
	"char_overhead_pct",
	"normalized_overhead_pct",
	"tokens_per_char",
}

// WriteCSV writes one row per measurement. Percentages that were not
// computed are written as 0.
func WriteCSV(w io.Writer, ms []experiment.Measurement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range ms {
		record := []string{
			m.SentenceID,
			m.Language,
			m.Tokenizer,
			strconv.Itoa(m.TokenCount),
			strconv.Itoa(m.CharCount),
			formatFloat(m.Overhead.Value),
			formatFloat(m.CharOverhead.Value),
			formatFloat(m.NormalizedOverhead.Value),
			formatFloat(m.TokensPerChar),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s/%s/%s: %w", m.SentenceID, m.Language, m.Tokenizer, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a detailed CSV back into raw measurements. Only the raw
// columns are used; run experiment.Engine.Apply to re-derive percentages.
func ReadCSV(r io.Reader) ([]experiment.Measurement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i+1, header[i], col)
		}
	}

	var out []experiment.Measurement
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		count, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid count %q: %w", line, record[3], err)
		}
		chars, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid char_count %q: %w", line, record[4], err)
		}
		if count < 0 || chars < 0 {
			return nil, fmt.Errorf("line %d: negative count", line)
		}
		out = append(out, experiment.NewMeasurement(record[0], record[1], record[2], count, chars))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
