package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tenancydeposit/tribunalrag/internal/index"
)

func queryCmd(cfgPath *string) *cobra.Command {
	var region string
	var yearMin int
	var asJSON bool
	var topK int

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a hybrid retrieval query against the corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*cfgPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			filter := index.Filter{MinYear: yearMin}
			rr, err := eng.Retrieve(context.Background(), args[0], topK, filter, region)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(rr, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("confidence=%.3f is_uncertain=%v reason=%q\n", rr.Confidence, rr.IsUncertain, rr.UncertaintyReason)
			for i, r := range rr.Results {
				fmt.Printf("%d. %s (%d) final=%.3f %s\n", i+1, r.Chunk.CaseReference, r.Chunk.Year, r.FinalScore, r.RelevanceNote)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "region hint")
	cmd.Flags().IntVar(&yearMin, "year-min", 0, "minimum decision year")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	cmd.Flags().IntVar(&topK, "top-k", 5, "final result count")
	return cmd
}
