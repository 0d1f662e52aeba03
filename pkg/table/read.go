package table

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// ReadKeys decodes a key table. Which columns are read depends on cols:
// Key and Label when Label is set, Key and Record when only Record is set,
// otherwise Key alone with each key labeled by itself.
func ReadKeys(r io.Reader, format Format, cols Columns) ([]cluster.Assignment[int64], error) {
	switch {
	case cols.Label != "":
		var out []cluster.Assignment[int64]
		err := readRows(r, format, []string{cols.Key, cols.Label}, func(_ int, v []int64) error {
			out = append(out, cluster.Assignment[int64]{Key: v[0], Label: v[1]})
			return nil
		})
		return out, err
	case cols.Record != "":
		var pairs [][2]int64
		err := readRows(r, format, []string{cols.Key, cols.Record}, func(_ int, v []int64) error {
			pairs = append(pairs, [2]int64{v[0], v[1]})
			return nil
		})
		if err != nil {
			return nil, err
		}
		return InitialFromRecords(pairs), nil
	default:
		var out []cluster.Assignment[int64]
		err := readRows(r, format, []string{cols.Key}, func(_ int, v []int64) error {
			out = append(out, cluster.Assignment[int64]{Key: v[0], Label: v[0]})
			return nil
		})
		return out, err
	}
}

// ReadEdges decodes an edge table using the Left and Right columns.
func ReadEdges(r io.Reader, format Format, cols Columns) ([]cluster.Edge[int64], error) {
	var out []cluster.Edge[int64]
	err := readRows(r, format, []string{cols.Left, cols.Right}, func(_ int, v []int64) error {
		out = append(out, cluster.Edge[int64]{From: v[0], To: v[1]})
		return nil
	})
	return out, err
}

// rowFunc receives the requested column values of one data row. vals is
// reused between calls.
type rowFunc func(row int, vals []int64) error

func readRows(r io.Reader, format Format, names []string, fn rowFunc) error {
	switch format {
	case FormatCSV:
		return readCSV(r, names, fn)
	case FormatJSON:
		return readJSON(r, names, fn)
	case FormatJSONL:
		return readJSONL(r, names, fn)
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", format)
}

func readCSV(r io.Reader, names []string, fn rowFunc) error {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return errs.New(errs.ErrCodeInvalidFormat, "missing header row")
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "read header")
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	idx, err := columnIndexes(header, names)
	if err != nil {
		return err
	}

	vals := make([]int64, len(names))
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "row %d", row)
		}
		for i, j := range idx {
			v, err := strconv.ParseInt(strings.TrimSpace(rec[j]), 10, 64)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInvalidFormat, err, "row %d column %q", row, names[i])
			}
			vals[i] = v
		}
		if err := fn(row, vals); err != nil {
			return err
		}
	}
}

func columnIndexes(header, names []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	idx := make([]int, len(names))
	for i, n := range names {
		j, ok := pos[n]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidColumn, "column %q not found in header %v", n, header)
		}
		idx[i] = j
	}
	return idx, nil
}

func readJSON(r io.Reader, names []string, fn rowFunc) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return errs.New(errs.ErrCodeInvalidFormat, "expected a JSON array of objects")
	}

	vals := make([]int64, len(names))
	for row := 1; dec.More(); row++ {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "row %d", row)
		}
		if err := objectValues(obj, names, vals); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if err := fn(row, vals); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode")
	}
	return nil
}

func readJSONL(r io.Reader, names []string, fn rowFunc) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	vals := make([]int64, len(names))
	for row := 1; ; row++ {
		var obj map[string]any
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "row %d", row)
		}
		if err := objectValues(obj, names, vals); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		if err := fn(row, vals); err != nil {
			return err
		}
	}
}

// objectValues extracts integer fields from a decoded JSON object. Numbers
// and numeric strings are accepted.
func objectValues(obj map[string]any, names []string, vals []int64) error {
	for i, n := range names {
		raw, ok := obj[n]
		if !ok {
			return errs.New(errs.ErrCodeInvalidColumn, "field %q missing", n)
		}
		var s string
		switch v := raw.(type) {
		case json.Number:
			s = v.String()
		case string:
			s = strings.TrimSpace(v)
		default:
			return errs.New(errs.ErrCodeInvalidFormat, "field %q is %T, want integer", n, raw)
		}
		x, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "field %q", n)
		}
		vals[i] = x
	}
	return nil
}
