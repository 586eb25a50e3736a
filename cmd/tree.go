package cmd

import (
	"fmt"

	"github.com/agubarev/orgtree/internal/render"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util"
	"github.com/spf13/cobra"
)

var (
	expandAll bool
	expandIDs []string
	search    string
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print a forest as an indented tree.",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadForest(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, render.StyleHeader.Render(fmt.Sprintf("%s (%d)", f.Entity(), f.Len())))

		// search results are shown flat, with their depth
		if search != "" {
			fmt.Fprint(out, render.Tree(f.Search(search), nil))
			return nil
		}

		x := tree.NewExpansion()
		if expandAll {
			x.ExpandAll(f)
		}

		for _, raw := range expandIDs {
			id, err := util.ParseULID(raw)
			if err != nil {
				return err
			}

			x.Expand(id)
		}

		fmt.Fprint(out, render.Tree(x.Visible(f), x))

		return nil
	},
}

// candidatesCmd represents the candidates command
var candidatesCmd = &cobra.Command{
	Use:   "candidates [node id]",
	Short: "List nodes eligible as a parent of a given node.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadForest(cmd.Context())
		if err != nil {
			return err
		}

		var raw string
		if len(args) > 0 {
			raw = args[0]
		}

		exclude, err := util.ParseULID(raw)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), render.Tree(f.ParentCandidates(exclude), nil))

		return nil
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node counters of a forest.",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadForest(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), render.Stats(f.Entity(), f.Stats()))

		return nil
	},
}

var dumpNested bool

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print a forest as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadForest(cmd.Context())
		if err != nil {
			return err
		}

		var val interface{} = f.Records()
		if dumpNested {
			val = f.Tree()
		}

		payload, err := util.PrettyJSON(val, false)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(payload)

		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{treeCmd, candidatesCmd, statsCmd, dumpCmd} {
		addSourceFlags(c)
		rootCmd.AddCommand(c)
	}

	treeCmd.Flags().BoolVar(&expandAll, "expand-all", false, "expand every interior node")
	treeCmd.Flags().StringSliceVar(&expandIDs, "expand", nil, "ids of nodes to expand")
	treeCmd.Flags().StringVarP(&search, "search", "s", "", "show only nodes matching a term")

	dumpCmd.Flags().BoolVar(&dumpNested, "nested", false, "nest children under their parents")
}
