package main

import "github.com/oisee/bil/pkg/il"

// buildSampleProgram constructs a small hand-built Program so render,
// roundtrip, and stats have something to operate on without a lifter or
// loader in the loop. It models two trivial functions: one that adds two
// 32-bit scalars, one with a single conditional branch.
func buildSampleProgram() (*il.Program, error) {
	prog := il.NewProgram()

	addFn, err := buildAddFunction(0x1000)
	if err != nil {
		return nil, err
	}
	if err := prog.AddFunction(addFn); err != nil {
		return nil, err
	}

	branchFn, err := buildBranchFunction(0x2000)
	if err != nil {
		return nil, err
	}
	if err := prog.AddFunction(branchFn); err != nil {
		return nil, err
	}

	return prog, nil
}

func buildAddFunction(address uint64) (*il.Function, error) {
	g := il.NewControlFlowGraph()
	b := g.NewBlock()

	dst := il.NewScalar("result", 32)

	sum, err := il.Add(il.Var("a", 32), il.Var("b", 32))
	if err != nil {
		return nil, err
	}
	if _, err := b.Assign(dst, sum); err != nil {
		return nil, err
	}

	if err := g.SetEntry(b.Index()); err != nil {
		return nil, err
	}
	if err := g.SetExit(b.Index()); err != nil {
		return nil, err
	}

	return il.NewFunction(address, g)
}

func buildBranchFunction(address uint64) (*il.Function, error) {
	g := il.NewControlFlowGraph()
	head := g.NewBlock()
	taken := g.NewBlock()
	fall := g.NewBlock()

	if _, err := head.Brc(il.Const(0x2010, 32), il.Var("zf", 1)); err != nil {
		return nil, err
	}
	taken.Raise(il.Const(0, 32))
	fall.Raise(il.Const(1, 32))

	if _, err := g.ConditionalEdge(head.Index(), taken.Index(), il.Var("zf", 1)); err != nil {
		return nil, err
	}
	if _, err := g.UnconditionalEdge(head.Index(), fall.Index()); err != nil {
		return nil, err
	}

	if err := g.SetEntry(head.Index()); err != nil {
		return nil, err
	}
	if err := g.SetExit(fall.Index()); err != nil {
		return nil, err
	}

	return il.NewFunction(address, g)
}
