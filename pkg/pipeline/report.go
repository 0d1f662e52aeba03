package pipeline

import (
	"fmt"
	"io"
)

// WriteReport writes the run transcript: one "NAME value" line per fact, in
// the order downstream checks expect.
//
//	NODES 5
//	EDGES 4
//	COMPONENTS 2
//	SWEEPS 3
//	WRITE CLUSTERS 6b86b273ff34fce19d6b804eff5a3f5747ada4eaa22f1d49c01e52ddb7875b4b
func (r *Result) WriteReport(w io.Writer) error {
	_, err := fmt.Fprintf(w, "NODES %d\nEDGES %d\nCOMPONENTS %d\nSWEEPS %d\nWRITE CLUSTERS %s\n",
		len(r.Assignments), len(r.Edges), r.Summary.Clusters, r.Stats.Sweeps, r.Hash)
	return err
}
