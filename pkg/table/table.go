package table

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"github.com/matzehuels/bookclusters/pkg/cluster"
)

// Compute runs the propagator over decoded tables. It is the tabular entry
// point; see cluster.Vectors for the flat one.
func Compute(ctx context.Context, keys []cluster.Assignment[int64], edges []cluster.Edge[int64], opts ...cluster.Option) ([]cluster.Assignment[int64], cluster.Stats, error) {
	return cluster.Propagate(ctx, keys, edges, opts...)
}

// InitialFromRecords turns (isbn, record) pairs into initial assignments:
// one per distinct isbn, labeled with the smallest record id it occurs with,
// sorted by isbn.
func InitialFromRecords(pairs [][2]int64) []cluster.Assignment[int64] {
	lowest := make(map[int64]int64, len(pairs))
	for _, p := range pairs {
		if cur, ok := lowest[p[0]]; !ok || p[1] < cur {
			lowest[p[0]] = p[1]
		}
	}
	out := make([]cluster.Assignment[int64], 0, len(lowest))
	for k, l := range lowest {
		out = append(out, cluster.Assignment[int64]{Key: k, Label: l})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Symmetrize returns edges followed by the reverse of every non-loop edge,
// which makes propagation reach the minimum of every undirected component.
func Symmetrize(edges []cluster.Edge[int64]) []cluster.Edge[int64] {
	out := make([]cluster.Edge[int64], 0, 2*len(edges))
	out = append(out, edges...)
	for _, e := range edges {
		if e.From != e.To {
			out = append(out, cluster.Edge[int64]{From: e.To, To: e.From})
		}
	}
	return out
}

// Hash returns a hex SHA-256 over keys and labels in order. Equal outputs
// hash equally regardless of the file format they were stored in.
func Hash(as []cluster.Assignment[int64]) string {
	h := sha256.New()
	var buf [16]byte
	for _, a := range as {
		binary.LittleEndian.PutUint64(buf[:8], uint64(a.Key))
		binary.LittleEndian.PutUint64(buf[8:], uint64(a.Label))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashEdges returns a hex SHA-256 over edges in order.
func HashEdges(edges []cluster.Edge[int64]) string {
	h := sha256.New()
	var buf [16]byte
	for _, e := range edges {
		binary.LittleEndian.PutUint64(buf[:8], uint64(e.From))
		binary.LittleEndian.PutUint64(buf[8:], uint64(e.To))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
