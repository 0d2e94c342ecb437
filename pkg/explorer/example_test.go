package explorer_test

import (
	"context"
	"fmt"

	"github.com/kleereach/reachsched/pkg/explorer"
	"github.com/kleereach/reachsched/pkg/searcher"
)

func Example() {
	program, err := explorer.ParseProgram([]byte(`
name: diamond
entry: 1
target: 5
edges:
  1: [2, 3]
  2: [4]
  3: [4]
  4: [5]
`))
	if err != nil {
		panic(err)
	}

	x, err := explorer.New(program, searcher.Config{Strategy: searcher.StrategyAStar},
		explorer.WithDistanceMap(program.Distances()))
	if err != nil {
		panic(err)
	}

	res, err := x.Run(context.Background(), explorer.Options{MaxSteps: 100, StopAtTarget: true})
	if err != nil {
		panic(err)
	}

	fmt.Println(res.Outcome, "after", res.Steps, "steps")
	// Output: target_reached after 4 steps
}
