package table

import (
	"fmt"
	"os"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// LoadKeys reads a key table from path. See ReadKeys.
func LoadKeys(path string, cols Columns) ([]cluster.Assignment[int64], error) {
	r, format, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	keys, err := ReadKeys(r, format, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return keys, nil
}

// LoadEdges reads an edge table from path. See ReadEdges.
func LoadEdges(path string, cols Columns) ([]cluster.Edge[int64], error) {
	r, format, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	edges, err := ReadEdges(r, format, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return edges, nil
}

// Save writes assignments to path, choosing format and compression from
// the file name.
func Save(path string, cols Columns, as []cluster.Assignment[int64]) (err error) {
	if err := errs.ValidatePath(path); err != nil {
		return err
	}
	format, comp, err := DetectFormat(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w, err := NewWriter(f, comp)
	if err != nil {
		return fmt.Errorf("compress %s: %w", path, err)
	}
	if err := WriteAssignments(w, format, cols, as); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Close()
}
