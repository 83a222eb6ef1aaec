package main

import (
	"fmt"
	"strings"

	"airdemo/internal/store"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newDemosCmd(a *app) *cobra.Command {
	demos := &cobra.Command{Use: "demos", Short: "Inspect demos"}

	var status, title string
	list := &cobra.Command{
		Use:   "list",
		Short: "List demos, highest sort first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.st.ListDemos(cmd.Context(), store.DemoFilter{Title: title, Status: status})
			if err != nil {
				return err
			}
			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"ID", "SLUG", "TITLE", "STATUS", "SORT", "OWNER"})
			for _, d := range rows {
				owner := ""
				if d.AdminEmail != nil {
					owner = *d.AdminEmail
				}
				tw.Append([]string{d.ID, d.Slug, d.Title, d.Status, fmt.Sprintf("%d", d.Sort), owner})
			}
			tw.Render()
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "only this status")
	list.Flags().StringVar(&title, "title", "", "title substring")
	demos.AddCommand(list)
	return demos
}

func newToolsCmd(a *app) *cobra.Command {
	tools := &cobra.Command{Use: "tools", Short: "Inspect efficiency tools"}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tools, highest sort first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.st.ListTools(cmd.Context(), status)
			if err != nil {
				return err
			}
			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"ID", "TITLE", "STATUS", "SORT", "SKILLS"})
			for _, t := range rows {
				tw.Append([]string{t.ID, t.Title, t.Status, fmt.Sprintf("%d", t.Sort), strings.Join(t.Skills, ", ")})
			}
			tw.Render()
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "only this status")
	tools.AddCommand(list)
	return tools
}
