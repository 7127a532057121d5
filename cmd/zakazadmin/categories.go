package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"zakazadmin/internal/api"
	"zakazadmin/internal/catalog"
	"zakazadmin/internal/tree"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect the category hierarchy",
		Long:  `Print the backend's category tree or check it for records that cannot be placed.`,
	}

	cmd.AddCommand(categoryTreeCmd())
	cmd.AddCommand(categoryCheckCmd())

	return cmd
}

func loadTree(cmd *cobra.Command) (*tree.Tree, error) {
	client := api.New(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, nil)
	svc := catalog.NewCategoryService(client, cfg.CategoryCascade, nil)
	t, err := svc.Load(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load categories from %s: %w", client.BaseURL(), err)
	}
	return t, nil
}

func categoryTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print every category, indented under its parent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := loadTree(cmd)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), t)
			printProblems(cmd.ErrOrStderr(), t)
			return nil
		},
	}
}

func categoryCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report dangling parents and parent cycles",
		Long: `Check exits with status 2 when a category references a missing parent or
closes a parent cycle, so it can guard deployments and cron jobs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := loadTree(cmd)
			if err != nil {
				return err
			}
			if len(t.Problems) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d categories, hierarchy is sound\n", t.Len())
				return nil
			}
			printProblems(cmd.OutOrStdout(), t)
			return exitError(2)
		},
	}
}

func printTree(w io.Writer, t *tree.Tree) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "ID\tNAME\tCHILDREN\n")
	for n, depth := range t.All() {
		fmt.Fprintf(tw, "%d\t%s%s\t%d\n", n.ID, strings.Repeat("  ", depth), n.Name, len(n.Children))
	}
}

func printProblems(w io.Writer, t *tree.Tree) {
	for _, p := range t.Problems {
		fmt.Fprintf(w, "warning: %s\n", p)
	}
}
