package table

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// WriteAssignments encodes final labels as a table with the Key column and
// the output label column (see Columns.OutputLabel).
func WriteAssignments(w io.Writer, format Format, cols Columns, as []cluster.Assignment[int64]) error {
	label := cols.OutputLabel()
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{cols.Key, label}); err != nil {
			return err
		}
		rec := make([]string, 2)
		for _, a := range as {
			rec[0] = strconv.FormatInt(a.Key, 10)
			rec[1] = strconv.FormatInt(a.Label, 10)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatJSON, FormatJSONL:
		return writeJSON(w, format == FormatJSONL, cols.Key, label, as)
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unknown format %q", format)
}

// writeJSON streams objects without building the whole document in memory.
func writeJSON(w io.Writer, lines bool, keyCol, labelCol string, as []cluster.Assignment[int64]) error {
	kq, _ := json.Marshal(keyCol)
	lq, _ := json.Marshal(labelCol)

	bw := bufio.NewWriter(w)
	if !lines {
		bw.WriteString("[")
	}
	buf := make([]byte, 0, 64)
	for i, a := range as {
		buf = buf[:0]
		if !lines {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, "\n  "...)
		}
		buf = append(buf, '{')
		buf = append(buf, kq...)
		buf = append(buf, ": "...)
		buf = strconv.AppendInt(buf, a.Key, 10)
		buf = append(buf, ", "...)
		buf = append(buf, lq...)
		buf = append(buf, ": "...)
		buf = strconv.AppendInt(buf, a.Label, 10)
		buf = append(buf, '}')
		if lines {
			buf = append(buf, '\n')
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if !lines {
		if len(as) > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString("]\n")
	}
	return bw.Flush()
}
