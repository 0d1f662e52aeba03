package table

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

func TestReadKeys(t *testing.T) {
	want := []cluster.Assignment[int64]{{Key: 1, Label: 10}, {Key: 2, Label: 20}}

	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"csv", FormatCSV, "isbn_id,cluster\n1,10\n2,20\n"},
		{"csv extra columns", FormatCSV, "note,cluster,isbn_id\nx,10,1\ny,20,2\n"},
		{"csv with BOM and spaces", FormatCSV, "\ufeffisbn_id, cluster\n1, 10\n2,20\n"},
		{"json", FormatJSON, `[{"isbn_id": 1, "cluster": 10}, {"isbn_id": "2", "cluster": 20}]`},
		{"jsonl", FormatJSONL, "{\"isbn_id\": 1, \"cluster\": 10}\n{\"isbn_id\": 2, \"cluster\": 20}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadKeys(strings.NewReader(tt.input), tt.format, DefaultColumns())
			if err != nil {
				t.Fatalf("ReadKeys() error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("ReadKeys() = %v, want %v", got, want)
			}
		})
	}
}

func TestReadKeysFromRecords(t *testing.T) {
	cols := DefaultColumns()
	cols.Label = ""
	cols.Record = "record"

	in := "isbn_id,record\n7,300\n3,200\n7,100\n3,250\n5,999\n"
	got, err := ReadKeys(strings.NewReader(in), FormatCSV, cols)
	if err != nil {
		t.Fatalf("ReadKeys() error: %v", err)
	}
	want := []cluster.Assignment[int64]{{Key: 3, Label: 200}, {Key: 5, Label: 999}, {Key: 7, Label: 100}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadKeys() = %v, want %v", got, want)
	}
}

func TestReadKeysSelfLabeled(t *testing.T) {
	cols := DefaultColumns()
	cols.Label = ""

	got, err := ReadKeys(strings.NewReader("isbn_id\n4\n9\n"), FormatCSV, cols)
	if err != nil {
		t.Fatalf("ReadKeys() error: %v", err)
	}
	want := []cluster.Assignment[int64]{{Key: 4, Label: 4}, {Key: 9, Label: 9}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadKeys() = %v, want %v", got, want)
	}
}

func TestReadEdges(t *testing.T) {
	got, err := ReadEdges(strings.NewReader("left_isbn,right_isbn\n1,2\n2,3\n"), FormatCSV, DefaultColumns())
	if err != nil {
		t.Fatalf("ReadEdges() error: %v", err)
	}
	want := []cluster.Edge[int64]{{From: 1, To: 2}, {From: 2, To: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadEdges() = %v, want %v", got, want)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errs.Code
	}{
		{"empty csv", FormatCSV, "", errs.ErrCodeInvalidFormat},
		{"missing column", FormatCSV, "isbn_id,other\n1,2\n", errs.ErrCodeInvalidColumn},
		{"not a number", FormatCSV, "isbn_id,cluster\n1,abc\n", errs.ErrCodeInvalidFormat},
		{"ragged row", FormatCSV, "isbn_id,cluster\n1\n", errs.ErrCodeInvalidFormat},
		{"json object", FormatJSON, `{"isbn_id": 1}`, errs.ErrCodeInvalidFormat},
		{"json missing field", FormatJSON, `[{"isbn_id": 1}]`, errs.ErrCodeInvalidColumn},
		{"json float", FormatJSON, `[{"isbn_id": 1.5, "cluster": 1}]`, errs.ErrCodeInvalidFormat},
		{"json bool", FormatJSON, `[{"isbn_id": true, "cluster": 1}]`, errs.ErrCodeInvalidFormat},
		{"jsonl garbage", FormatJSONL, "{\"isbn_id\": 1, \"cluster\": 1}\nnope\n", errs.ErrCodeInvalidFormat},
		{"unknown format", Format("xml"), "", errs.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadKeys(strings.NewReader(tt.input), tt.format, DefaultColumns())
			if err == nil {
				t.Fatal("ReadKeys() should fail")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		comp   Compression
	}{
		{"isbns.csv", FormatCSV, CompressionNone},
		{"data/edges.CSV.GZ", FormatCSV, CompressionGzip},
		{"/tmp/edges.csv.zst", FormatCSV, CompressionZstd},
		{"out.json.lz4", FormatJSON, CompressionLZ4},
		{"out.ndjson", FormatJSONL, CompressionNone},
		{"out.jsonl.zst", FormatJSONL, CompressionZstd},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, c, err := DetectFormat(tt.path)
			if err != nil {
				t.Fatalf("DetectFormat() error: %v", err)
			}
			if f != tt.format || c != tt.comp {
				t.Errorf("DetectFormat() = %q, %q, want %q, %q", f, c, tt.format, tt.comp)
			}
		})
	}

	for _, bad := range []string{"edges.parquet", "edges.gz", "edges"} {
		if _, _, err := DetectFormat(bad); !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("DetectFormat(%q) error = %v, want %s", bad, err, errs.ErrCodeInvalidFormat)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, "JSON": FormatJSON, "ndjson": FormatJSONL, "jsonl": FormatJSONL} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("tsv"); err == nil {
		t.Error("ParseFormat(tsv) should fail")
	}
}

func TestColumnsValidate(t *testing.T) {
	if err := DefaultColumns().Validate(); err != nil {
		t.Errorf("DefaultColumns().Validate() error: %v", err)
	}

	c := DefaultColumns()
	c.Right = c.Left
	if err := c.Validate(); err == nil {
		t.Error("identical edge columns should be rejected")
	}

	c = DefaultColumns()
	c.Key = "isbn id"
	if err := c.Validate(); !errs.Is(err, errs.ErrCodeInvalidColumn) {
		t.Errorf("Validate() error = %v, want %s", err, errs.ErrCodeInvalidColumn)
	}
}
