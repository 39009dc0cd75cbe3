package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/model"
	"github.com/sadopc/logbook/internal/store"
)

func newCategoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	var c model.Category
	var typ string
	var children []string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				c.Type = model.CategoryType(typ)
				c.Children = nil
				for _, ref := range children {
					child, err := resolveCategory(s, ref)
					if err != nil {
						return err
					}
					c.Children = append(c.Children, child.ID)
				}
				if err := s.CreateCategory(&c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", c.DisplayName(), c.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&c.Name, "name", "", "Category name")
	add.Flags().StringVar(&c.Icon, "icon", "", "Icon shown before the name")
	add.Flags().StringVar(&typ, "type", string(model.TypeTodo), "todo, value, valueAccumulative or protocol")
	add.Flags().StringVar(&c.Config, "measure", "", "Measure for value types: volume, time or mass")
	add.Flags().StringSliceVar(&children, "child", nil, "Child category id or name (repeatable)")
	add.Flags().BoolVar(&c.Inverted, "inverted", false, "Staying under the target counts as success")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(s *store.Store, cfg *config.Config) error {
				cats, err := s.ListCategories()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tNAME\tTYPE\tMEASURE\tCHILDREN")
				for _, c := range cats {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.DisplayName(), c.Type, c.Config, strings.Join(c.Children, ","))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
