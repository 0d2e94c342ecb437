// Package explorer runs goal-directed exploration over simulated programs.
//
// A Program is a control-flow graph read from YAML:
//
//	name: diamond
//	entry: 1
//	target: 5
//	edges:
//	  1: [2, 3]   # branch: the state continues at 2, a fork starts at 3
//	  2: [4]
//	  3: [4]
//	  4: [5]
//
// The Engine executes one state per step. A state at a branch forks one new
// state per extra successor; a state executing an exit or the target
// terminates. Explorer drives the loop the way a symbolic execution engine
// drives its searcher:
//
//	x, _ := explorer.New(program, searcher.Config{Strategy: searcher.StrategyAStar2},
//	    explorer.WithDistanceMap(program.Distances()))
//	res, err := x.Run(ctx, explorer.Options{MaxSteps: 10000, StopAtTarget: true})
//
// Program.Distances computes the distance map of a program by a backward
// breadth-first search from the target.
package explorer
