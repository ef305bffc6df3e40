package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	catalogCategory string
	catalogProfile  string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the metric catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		if catalogProfile != "" {
			for _, id := range cat.DefaultsForProfile(catalogProfile) {
				fmt.Println(id)
			}
			return nil
		}

		ids := cat.All()
		if catalogCategory != "" {
			ids = cat.ByCategory(catalogCategory)
		}
		sort.Strings(ids)

		for _, id := range ids {
			d, ok := cat.Get(id)
			if !ok {
				continue
			}
			fmt.Printf("%-32s %-12s %-10s %s\n", d.ID, d.Category, d.Unit, d.Name)
		}
		return nil
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List known user profiles and their default metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		for _, name := range cat.Profiles() {
			fmt.Printf("%s\n", name)
			for _, id := range cat.DefaultsForProfile(name) {
				fmt.Printf("  %s\n", id)
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "filter by display category")
	catalogCmd.Flags().StringVar(&catalogProfile, "profile", "", "print the default metric ids for a profile")
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(profilesCmd)
}
