package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
	"github.com/tenancydeposit/tribunalrag/internal/synth"
)

// serveCmd runs the process-wide open -> serve -> close lifecycle: one
// Engine is opened and held for the process lifetime, and each line of
// stdin is read as a CaseFile, predicted against, and the resulting
// Prediction written to stdout as one JSON line. There is no HTTP surface
// here by design; a caller wanting HTTP fronts this loop itself.
func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Hold the engine open and predict against newline-delimited CaseFile JSON on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(*cfgPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			log := logging.Default().Named("serve")
			log.Info("engine open, awaiting case files on stdin")

			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			enc := json.NewEncoder(os.Stdout)

			for scanner.Scan() {
				line := scanner.Bytes()
				if len(line) == 0 {
					continue
				}
				var caseFile domain.CaseFile
				if err := json.Unmarshal(line, &caseFile); err != nil {
					log.Warn("malformed case file line", logging.Err(err))
					_ = enc.Encode(map[string]string{"error": err.Error()})
					continue
				}

				ctx := context.Background()
				prediction, err := eng.GeneratePrediction(ctx, caseFile, synth.Options{IncludeReasoning: true})
				if err != nil {
					log.Error("prediction failed", logging.String("case_id", caseFile.CaseID), logging.Err(err))
					_ = enc.Encode(map[string]string{"case_id": caseFile.CaseID, "error": err.Error()})
					continue
				}
				if err := enc.Encode(prediction); err != nil {
					return fmt.Errorf("writing prediction: %w", err)
				}
			}
			if err := scanner.Err(); err != nil && err != io.EOF {
				return err
			}
			log.Info("stdin closed, shutting down")
			return nil
		},
	}
}
