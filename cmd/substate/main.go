// Package main provides the substate CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orneryd/substate"
	"github.com/orneryd/substate/engine"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "substate",
		Short: "substate - an in-memory, transactional, undoable document model",
		Long: `substate is a tree of typed nodes (Bytes, Vector, Mapping, Sheet, Struct)
supporting atomic multi-step mutations with reversible undo/redo history.

This CLI scripts small transactions against a Model for manual exploration
and smoke testing; it is not part of the library's invariant surface.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("substate v%s\n", version)
		},
	})

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the concrete scenario walk-throughs and print before/after state",
		RunE:  runDemo,
	}
	rootCmd.AddCommand(demoCmd)

	bytesCmd := &cobra.Command{
		Use:   "bytes",
		Short: "Build a Bytes node, mutate it, then undo/redo",
		RunE:  runBytesDemo,
	}
	rootCmd.AddCommand(bytesCmd)

	vectorCmd := &cobra.Command{
		Use:   "vector",
		Short: "Build a Vector node, move a slice of children, then undo",
		RunE:  runVectorDemo,
	}
	rootCmd.AddCommand(vectorCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newModel() *substate.Model {
	return substate.NewModel(engine.NewMemoryEngine(engine.DefaultConfig()))
}

// runBytesDemo walks scenario 1 of §8: root := Bytes("hello"); append(" world");
// read; undo; read; redo; read.
func runBytesDemo(cmd *cobra.Command, args []string) error {
	m := newModel()
	root := substate.NewBytesNode()

	m.BeginTransaction()
	m.SetRoot(root)
	root.Insert(0, []byte("hello"))
	m.CommitTransaction("seed hello")
	fmt.Printf("after seed:   %q\n", string(root.Bytes()))

	m.BeginTransaction()
	root.Append([]byte(" world"))
	m.CommitTransaction("append world")
	fmt.Printf("after append: %q\n", string(root.Bytes()))

	m.Undo()
	fmt.Printf("after undo:   %q\n", string(root.Bytes()))

	m.Redo()
	fmt.Printf("after redo:   %q\n", string(root.Bytes()))
	return nil
}

// runVectorDemo walks scenario 2 of §8: Vector[A,B,C,D,E]; move(1,2,4) moves
// B,C to pre-move index 4, yielding A,D,B,C,E; undo restores A,B,C,D,E.
func runVectorDemo(cmd *cobra.Command, args []string) error {
	m := newModel()
	root := substate.NewVectorNode()

	labels := []string{"A", "B", "C", "D", "E"}
	leaves := make([]substate.Node, len(labels))
	for i, label := range labels {
		b := substate.NewBytesNode()
		b.Insert(0, []byte(label))
		leaves[i] = b
	}

	m.BeginTransaction()
	m.SetRoot(root)
	root.Append(leaves)
	m.CommitTransaction("seed A-E")
	fmt.Printf("after seed: %s\n", vectorLabels(root))

	m.BeginTransaction()
	root.Move(1, 2, 4)
	m.CommitTransaction("move B,C to 4")
	fmt.Printf("after move: %s\n", vectorLabels(root))

	m.Undo()
	fmt.Printf("after undo: %s\n", vectorLabels(root))
	return nil
}

func vectorLabels(root *substate.VectorNode) string {
	out := ""
	for i := 0; i < root.Len(); i++ {
		b := root.At(i).(*substate.BytesNode)
		out += string(b.Bytes())
	}
	return out
}

func runDemo(cmd *cobra.Command, args []string) error {
	fmt.Println("== bytes ==")
	if err := runBytesDemo(cmd, args); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("== vector ==")
	return runVectorDemo(cmd, args)
}
