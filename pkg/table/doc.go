// Package table reads and writes the named-column tables that feed the
// cluster propagator.
//
// # Shapes
//
// Two tables drive a run:
//
//   - key table: one row per ISBN with its initial label, columns
//     "isbn_id" and "cluster" by default
//   - edge table: one row per link, columns "left_isbn" and "right_isbn"
//
// A key table may instead carry ISBN-to-record rows ("isbn_id", "record");
// set [Columns.Label] to "" and [Columns.Record] to the record column and
// the initial label of each ISBN becomes the smallest record id it appears
// with. When neither a label nor a record column is configured, every key
// starts labeled with itself.
//
// # Formats
//
// The format follows the file extension: .csv (header row required), .json
// (array of objects) and .jsonl or .ndjson (one object per line). A trailing
// .gz, .zst or .lz4 adds transparent compression on both read and write:
//
//	keys, err := table.LoadKeys("data/isbns.csv.zst", table.DefaultColumns())
//	edges, err := table.LoadEdges("data/isbn-edges.csv.gz", table.DefaultColumns())
//	out, stats, err := table.Compute(ctx, keys, edges)
//	err = table.Save("data/isbn-clusters.csv", table.DefaultColumns(), out)
package table
