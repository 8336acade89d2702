package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/kmeans"
)

var header = []string{"x", "y"}

// WriteCSV writes points as "x,y" rows preceded by a header row.
func WriteCSV(w io.Writer, points []kmeans.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range points {
		row := []string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses points written by WriteCSV. A leading "x,y" header is optional.
// Rows that do not hold exactly two numbers yield an INVALID_FORMAT error
// naming the line.
func ReadCSV(r io.Reader) ([]kmeans.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var points []kmeans.Point
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv line %d", line)
		}
		if line == 1 && len(rec) == 2 && rec[0] == header[0] && rec[1] == header[1] {
			continue
		}
		if len(rec) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected 2 fields, got %d", line, len(rec))
		}
		x, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: parse x", line)
		}
		y, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: parse y", line)
		}
		points = append(points, kmeans.Point{X: x, Y: y})
	}
	return points, nil
}

// ExportCSV writes points to a CSV file at path.
func ExportCSV(path string, points []kmeans.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportCSV reads points from the CSV file at path.
func ImportCSV(path string) ([]kmeans.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
