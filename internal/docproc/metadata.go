package docproc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Metadata is the structural data the Document Processor attaches to a
// CaseDocument.
type Metadata struct {
	CaseReference string `json:"case_reference"`
	Year          int    `json:"year"`
	Region        string `json:"region"`
	CaseType      string `json:"case_type"`
}

// caseRefParts is the number of underscore-separated segments in the BAILII
// case-reference convention:
// <REGION>_<office>_<type>_<year>_<seq>, e.g. LON_00BK_HMF_2022_0227.
var caseRefParts = 5

// ExtractMetadata resolves a CaseDocument's structural metadata. The primary
// source is a sidecar JSON file produced by the scraper; if sidecarPath is
// empty or unreadable, metadata is parsed from pdfPath's filename using the
// BAILII convention. A malformed path with neither source available is
// rejected.
func ExtractMetadata(pdfPath, sidecarPath string) (Metadata, error) {
	if sidecarPath != "" {
		if meta, err := readSidecar(sidecarPath); err == nil {
			return meta, nil
		}
	}
	return parseFromFilename(pdfPath)
}

func readSidecar(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading sidecar %q: %w", path, err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parsing sidecar %q: %w", path, err)
	}
	if meta.CaseReference == "" {
		return Metadata{}, fmt.Errorf("sidecar %q missing case_reference", path)
	}
	return meta, nil
}

// parseFromFilename derives metadata from the BAILII case-reference
// convention embedded in the PDF's base filename:
// <REGION>_<office>_<type>_<year>_<seq>.ext. The year parsed here is the
// decision year; it is the only source of truth when no sidecar is present,
// per the convention that case references are stamped with their decision
// year.
func parseFromFilename(pdfPath string) (Metadata, error) {
	base := filepath.Base(pdfPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(base, "_")
	if len(parts) < caseRefParts {
		return Metadata{}, fmt.Errorf("docproc: filename %q does not match the BAILII case-reference convention", base)
	}

	region := parts[0]
	caseType := parts[2]
	yearStr := parts[3]

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Metadata{}, fmt.Errorf("docproc: filename %q has non-numeric year segment %q: %w", base, yearStr, err)
	}

	return Metadata{
		CaseReference: base,
		Year:          year,
		Region:        strings.ToUpper(region),
		CaseType:      strings.ToUpper(caseType),
	}, nil
}
