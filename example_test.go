package arbor_test

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
)

func ExampleEngine() {
	ctx := context.Background()

	eng, err := arbor.New(memory.NewStore())
	if err != nil {
		panic(err)
	}
	if _, err := eng.Initialize(ctx); err != nil {
		panic(err)
	}

	tree := eng.AddNode(ctx, "", "Fruits")
	fruits := tree[0].ID
	eng.AddNode(ctx, fruits, "Apples")
	tree = eng.AddNode(ctx, fruits, "Pears")

	domain.Walk(tree, func(n domain.Node, depth int) bool {
		fmt.Printf("%*s%s\n", depth*2, "", n.Name)
		return true
	})

	tree = eng.DeleteNode(ctx, fruits)
	fmt.Println(len(tree))
	// Output:
	// Fruits
	//   Apples
	//   Pears
	// 0
}
