package domain

import "testing"

func TestCaseFileMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		file    CaseFile
		missing []string
	}{
		{
			name: "complete",
			file: CaseFile{
				Property: Property{Address: "1 Example Street"},
				Tenancy:  Tenancy{StartDate: "2023-01-15", DepositAmount: 1500},
				Issues:   []IssueType{IssueCleaning},
				DepositProtectionKnown: true,
			},
			missing: nil,
		},
		{
			name: "missing address",
			file: CaseFile{
				Tenancy: Tenancy{StartDate: "2023-01-15", DepositAmount: 1500},
				Issues:  []IssueType{IssueCleaning},
				DepositProtectionKnown: true,
			},
			missing: []string{"property_address"},
		},
		{
			name: "three of five present",
			file: CaseFile{
				Property: Property{},
				Tenancy:  Tenancy{StartDate: "2023-01-15", DepositAmount: 1500},
				Issues:   []IssueType{IssueCleaning},
				DepositProtectionKnown: false,
			},
			missing: []string{"property_address", "deposit_protection_status"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.file.MissingRequiredFields()
			if len(got) != len(tc.missing) {
				t.Fatalf("got %v, want %v", got, tc.missing)
			}
			for i := range got {
				if got[i] != tc.missing[i] {
					t.Fatalf("got %v, want %v", got, tc.missing)
				}
			}
			wantComplete := len(tc.missing) == 0
			if tc.file.IntakeComplete() != wantComplete {
				t.Fatalf("IntakeComplete() = %v, want %v", tc.file.IntakeComplete(), wantComplete)
			}
		})
	}
}

func TestDocumentChunkMatchesDocument(t *testing.T) {
	doc := CaseDocument{CaseReference: "LON_00BK_HMF_2022_0227", Year: 2022, Region: "LON"}
	chunk := DocumentChunk{CaseReference: "LON_00BK_HMF_2022_0227", Year: 2022, Region: "LON"}
	if !chunk.MatchesDocument(doc) {
		t.Fatal("expected chunk to match its document")
	}
	chunk.Year = 2021
	if chunk.MatchesDocument(doc) {
		t.Fatal("expected mismatch after year divergence")
	}
}
