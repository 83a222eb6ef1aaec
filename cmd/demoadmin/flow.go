package main

import (
	"context"
	"fmt"
	"strconv"

	"airdemo/internal/flow"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newFlowCmd(a *app) *cobra.Command {
	fc := &cobra.Command{Use: "flow", Short: "Show or edit a demo's flow diagram"}
	fc.AddCommand(
		newFlowShowCmd(a),
		newFlowAddNodeCmd(a),
		newFlowRemoveNodeCmd(a),
		newFlowConnectCmd(a),
		newFlowDisconnectCmd(a),
		newFlowKeyNodeCmd(a),
	)
	return fc
}

// edit loads the flow of ref, applies fn and saves the whole result.
func (a *app) edit(cmd *cobra.Command, ref string, fn func(*flow.Editor) error) error {
	ctx := cmd.Context()
	d, err := a.demo(ctx, ref)
	if err != nil {
		return err
	}
	fd, err := a.st.LoadFlow(ctx, d.ID)
	if err != nil {
		return err
	}
	e := flow.NewEditor(fd.Snapshot())
	if err := fn(e); err != nil {
		return err
	}
	dangling, err := a.st.SaveFlow(ctx, d.ID, e.Snapshot())
	if err != nil {
		return err
	}
	for _, ed := range dangling {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: edge %s -> %s points at a missing node\n", ed.SourceNodeKey, ed.TargetNodeKey)
	}
	return nil
}

func newFlowShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <demo>",
		Short: "Print nodes, edges and the side panel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.show(cmd.Context(), cmd, args[0])
		},
	}
}

func (a *app) show(ctx context.Context, cmd *cobra.Command, ref string) error {
	d, err := a.demo(ctx, ref)
	if err != nil {
		return err
	}
	fd, err := a.st.LoadFlow(ctx, d.ID)
	if err != nil {
		return err
	}
	snap := fd.Snapshot()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s (%s)\n\n", d.Title, d.Slug)
	tw := tablewriter.NewWriter(out)
	tw.SetHeader([]string{"KEY", "TITLE", "ICON", "COLOR", "X", "Y"})
	for _, n := range snap.Nodes {
		tw.Append([]string{n.NodeKey, n.Title, n.Icon, n.Color,
			strconv.FormatFloat(n.PosX, 'f', -1, 64), strconv.FormatFloat(n.PosY, 'f', -1, 64)})
	}
	tw.Render()

	fmt.Fprintln(out)
	et := tablewriter.NewWriter(out)
	et.SetHeader([]string{"#", "EDGE"})
	for i, ed := range snap.Edges {
		et.Append([]string{strconv.Itoa(i), ed.SourceNodeKey + " -> " + ed.TargetNodeKey})
	}
	et.Render()
	for _, ed := range flow.DanglingEdges(snap.Nodes, snap.Edges) {
		fmt.Fprintf(out, "dangling: %s -> %s\n", ed.SourceNodeKey, ed.TargetNodeKey)
	}

	if p := snap.PanelConfig; p != nil {
		fmt.Fprintf(out, "\npanel: video=%q doc=%q\n", p.VideoURL, p.DocURL)
		for i, k := range p.KeyNodes {
			fmt.Fprintf(out, "key node %d: %s\n", i, k)
		}
	}
	return nil
}

func newFlowAddNodeCmd(a *app) *cobra.Command {
	var n flow.Node
	cmd := &cobra.Command{
		Use:   "add-node <demo>",
		Short: "Append a node; the key is generated when omitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(e *flow.Editor) error {
				added, err := e.AddNode(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added node %s\n", added.NodeKey)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&n.NodeKey, "key", "", "node key")
	f.StringVar(&n.Title, "title", "", "node title")
	f.StringVar(&n.Description, "description", "", "node description")
	f.StringVar(&n.Icon, "icon", "", "icon name")
	f.StringVar(&n.Color, "color", "", "color class")
	f.Float64Var(&n.PosX, "x", 0, "x position")
	f.Float64Var(&n.PosY, "y", 0, "y position")
	return cmd
}

func newFlowRemoveNodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-node <demo> <key>",
		Short: "Remove a node and the edges touching it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(e *flow.Editor) error {
				return e.RemoveNode(args[1])
			})
		},
	}
}

func newFlowConnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <demo> <source> <target>",
		Short: "Add an edge between two existing nodes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.edit(cmd, args[0], func(e *flow.Editor) error {
				_, err := e.AddEdge(args[1], args[2])
				return err
			})
		},
	}
}

func newFlowDisconnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <demo> <index>",
		Short: "Remove the edge at index (see flow show)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			return a.edit(cmd, args[0], func(e *flow.Editor) error {
				return e.RemoveEdge(i)
			})
		},
	}
}

func newFlowKeyNodeCmd(a *app) *cobra.Command {
	kc := &cobra.Command{Use: "key-node", Short: "Edit the panel's key node labels"}
	kc.AddCommand(
		&cobra.Command{
			Use:   "add <demo> <label>",
			Short: "Append a key node label",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.edit(cmd, args[0], func(e *flow.Editor) error {
					e.AddKeyNode(args[1])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <demo> <index> <label>",
			Short: "Replace the label at index",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("index: %w", err)
				}
				return a.edit(cmd, args[0], func(e *flow.Editor) error {
					return e.UpdateKeyNode(i, args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "remove <demo> <index>",
			Short: "Remove the label at index",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				i, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("index: %w", err)
				}
				return a.edit(cmd, args[0], func(e *flow.Editor) error {
					return e.RemoveKeyNode(i)
				})
			},
		},
	)
	return kc
}
