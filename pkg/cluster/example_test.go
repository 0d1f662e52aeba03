package cluster_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/bookclusters/pkg/cluster"
)

func ExamplePropagate() {
	keys := []cluster.Assignment[int64]{
		{Key: 1, Label: 10},
		{Key: 2, Label: 20},
		{Key: 3, Label: 30},
	}
	edges := []cluster.Edge[int64]{{From: 1, To: 2}, {From: 2, To: 3}}

	out, stats, err := cluster.Propagate(context.Background(), keys, edges)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, a := range out {
		fmt.Printf("%d -> %d\n", a.Key, a.Label)
	}
	fmt.Println("sweeps:", stats.Sweeps)
	// Output:
	// 1 -> 10
	// 2 -> 10
	// 3 -> 10
	// sweeps: 2
}

func ExampleVectors() {
	labels, _, err := cluster.Vectors(context.Background(),
		[]int{1, 2}, // keys
		[]int{5, 3}, // initial labels
		[]int{2},    // edge sources
		[]int{1},    // edge destinations
	)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(labels)
	// Output: [3 3]
}

func ExampleReporterFunc() {
	report := cluster.ReporterFunc(func(_ context.Context, s cluster.Sweep) {
		fmt.Printf("sweep %d changed %d\n", s.Index, s.Changed)
	})

	keys := []cluster.Assignment[int]{{Key: 1, Label: 1}, {Key: 2, Label: 2}, {Key: 3, Label: 3}}
	edges := []cluster.Edge[int]{{From: 2, To: 3}, {From: 1, To: 2}}
	_, _, _ = cluster.Propagate(context.Background(), keys, edges, cluster.WithReporter(report))
	// Output:
	// sweep 1 changed 2
	// sweep 2 changed 1
	// sweep 3 changed 0
}
