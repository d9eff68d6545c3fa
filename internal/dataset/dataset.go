// Package dataset stores labeled landmark samples as delimited text.
//
// Files written by this package start with a schema line followed by a
// column header:
//
//	# mudra-dataset v1 features=42
//	label,x0,y0,x1,y1,...,x20,y20
//	fist,0.51,0.79,...
//
// Files without the schema line (older captures) are still readable; their
// optional header row is detected from its content.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// SchemaVersion is the version written to new dataset files.
const SchemaVersion = 1

const schemaPrefix = "# mudra-dataset"

// ErrData is returned for a missing, empty or malformed dataset.
var ErrData = errors.New("dataset error")

// Schema describes the layout of a dataset file.
type Schema struct {
	Version  int
	Features int
	// Declared is false for legacy files that carry no schema line.
	Declared bool
}

// Sample is one labeled feature vector.
type Sample struct {
	Label    string
	Features []float64
}

// Dataset is the full content of a dataset file.
type Dataset struct {
	Schema  Schema
	Samples []Sample
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Labels returns the label of every sample in file order.
func (d *Dataset) Labels() []string {
	labels := make([]string, len(d.Samples))
	for i, s := range d.Samples {
		labels[i] = s.Label
	}
	return labels
}

// Matrix returns the feature vectors in file order. Rows are shared with
// the dataset, not copied.
func (d *Dataset) Matrix() [][]float64 {
	x := make([][]float64, len(d.Samples))
	for i, s := range d.Samples {
		x[i] = s.Features
	}
	return x
}

// LabelCount is the number of samples recorded for one label.
type LabelCount struct {
	Label string
	Count int
}

// Counts returns per-label sample counts in order of first appearance.
func (d *Dataset) Counts() []LabelCount {
	index := map[string]int{}
	var counts []LabelCount
	for _, s := range d.Samples {
		i, ok := index[s.Label]
		if !ok {
			i = len(counts)
			index[s.Label] = i
			counts = append(counts, LabelCount{Label: s.Label})
		}
		counts[i].Count++
	}
	return counts
}

// Header returns the column header for a file with n features:
// label,x0,y0,x1,y1,...
func Header(n int) []string {
	cols := make([]string, 0, n+1)
	cols = append(cols, "label")
	for i := 0; i < n; i++ {
		axis := "x"
		if i%2 == 1 {
			axis = "y"
		}
		cols = append(cols, axis+strconv.Itoa(i/2))
	}
	return cols
}

func schemaLine(features int) string {
	return fmt.Sprintf("%s v%d features=%d", schemaPrefix, SchemaVersion, features)
}

func parseSchemaLine(line string) (Schema, error) {
	s := Schema{Declared: true}
	fields := strings.Fields(strings.TrimPrefix(line, schemaPrefix))
	for _, f := range fields {
		switch {
		case strings.HasPrefix(f, "v"):
			v, err := strconv.Atoi(f[1:])
			if err != nil {
				return s, fmt.Errorf("%w: bad schema version %q", ErrData, f)
			}
			s.Version = v
		case strings.HasPrefix(f, "features="):
			n, err := strconv.Atoi(strings.TrimPrefix(f, "features="))
			if err != nil || n < 1 {
				return s, fmt.Errorf("%w: bad feature count %q", ErrData, f)
			}
			s.Features = n
		}
	}
	if s.Version != SchemaVersion {
		return s, fmt.Errorf("%w: unsupported schema version %d", ErrData, s.Version)
	}
	if s.Features == 0 {
		return s, fmt.Errorf("%w: schema line has no feature count", ErrData)
	}
	return s, nil
}

// Append adds one labeled sample to the file at path, creating the file
// with its schema line and header first if it does not exist yet.
func Append(path, label string, features []float64) error {
	if err := validateSample(label, features); err != nil {
		return err
	}

	schema, err := ReadSchema(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		schema = Schema{Version: SchemaVersion, Features: len(features), Declared: true}
	case err != nil:
		return err
	case schema.Features != 0 && schema.Features != len(features):
		return fmt.Errorf("%w: file holds %d features, sample has %d", ErrData, schema.Features, len(features))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat dataset: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if _, err := io.WriteString(f, schemaLine(len(features))+"\n"); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		if err := w.Write(Header(len(features))); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := make([]string, 0, len(features)+1)
	row = append(row, label)
	for _, v := range features {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return f.Sync()
}

func validateSample(label string, features []float64) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: empty label", ErrData)
	}
	if strings.ContainsAny(label, "\r\n") {
		return fmt.Errorf("%w: label contains a line break", ErrData)
	}
	if len(features) != detector.NumFeatures {
		return fmt.Errorf("%w: sample has %d features, want %d", ErrData, len(features), detector.NumFeatures)
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %d is not finite", ErrData, i)
		}
	}
	return nil
}

// ReadSchema returns the declared schema of the file at path. Legacy files
// yield a zero Schema with Declared false. A missing file returns an error
// matching os.ErrNotExist.
func ReadSchema(path string) (Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return Schema{}, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Schema{}, fmt.Errorf("read dataset: %w", err)
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, schemaPrefix) {
		return Schema{}, nil
	}
	return parseSchemaLine(line)
}

// Load reads the whole dataset at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrData, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrData, err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a dataset from r.
func Read(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	ds := &Dataset{}
	lineNo := 0

	first, err := br.Peek(len(schemaPrefix))
	if err == nil && string(first) == schemaPrefix {
		line, _ := br.ReadString('\n')
		lineNo++
		schema, err := parseSchemaLine(strings.TrimSpace(line))
		if err != nil {
			return nil, err
		}
		ds.Schema = schema
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	width := 0
	if ds.Schema.Declared {
		width = ds.Schema.Features + 1
	}
	headerChecked := false

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrData, lineNo, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		if !headerChecked {
			headerChecked = true
			if ds.Schema.Declared {
				if isExactHeader(rec, ds.Schema.Features) {
					continue
				}
			} else if isLegacyHeader(rec) {
				continue
			}
		}

		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d columns, need a label and at least one coordinate", ErrData, lineNo, len(rec))
		}
		if width == 0 {
			width = len(rec)
		}
		if len(rec) != width {
			return nil, fmt.Errorf("%w: line %d has %d columns, want %d", ErrData, lineNo, len(rec), width)
		}

		features := make([]float64, len(rec)-1)
		for i, field := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %q is not a number", ErrData, lineNo, i+2, field)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: line %d column %d: %q is not finite", ErrData, lineNo, i+2, field)
			}
			features[i] = v
		}
		ds.Samples = append(ds.Samples, Sample{Label: rec[0], Features: features})
	}

	if !ds.Schema.Declared && width > 0 {
		ds.Schema.Features = width - 1
	}
	return ds, nil
}

// isExactHeader reports whether rec is the column header written for a
// file with n features.
func isExactHeader(rec []string, n int) bool {
	want := Header(n)
	if len(rec) != len(want) {
		return false
	}
	for i, col := range rec {
		if !strings.EqualFold(strings.TrimSpace(col), want[i]) {
			return false
		}
	}
	return true
}

// isLegacyHeader reports whether the first row of a file without a schema
// line is a column header: its first column is "label" or none of its
// coordinate columns is numeric.
func isLegacyHeader(rec []string) bool {
	if strings.EqualFold(strings.TrimSpace(rec[0]), "label") {
		return true
	}
	if len(rec) < 2 {
		return false
	}
	for _, field := range rec[1:] {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err == nil {
			return false
		}
	}
	return true
}
