package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Report corpus-wide statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*cfgPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			stats, err := eng.CorpusStats(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("documents=%d unique_cases=%d chunks=%d\n", stats.Documents, stats.UniqueCases, stats.Chunks)
			fmt.Println("year_distribution:")
			for year, n := range stats.YearDistribution {
				fmt.Printf("  %d: %d\n", year, n)
			}
			fmt.Println("region_distribution:")
			for region, n := range stats.RegionDistribution {
				fmt.Printf("  %s: %d\n", region, n)
			}
			fmt.Println("case_type_distribution:")
			for ct, n := range stats.CaseTypeDistribution {
				fmt.Printf("  %s: %d\n", ct, n)
			}
			return nil
		},
	}
}

func clearCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all persisted corpus state",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*cfgPath)
			if err != nil {
				return err
			}
			defer eng.Close()
			if err := eng.Clear(context.Background()); err != nil {
				return err
			}
			fmt.Println("corpus cleared")
			return nil
		},
	}
}

func rebuildBM25Cmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-bm25",
		Short: "Rebuild the sparse index from the semantic store (recovery path)",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*cfgPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			n, err := eng.RebuildSparseFromSemantic(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("rebuilt sparse index with %d chunks\n", n)
			return nil
		},
	}
}
