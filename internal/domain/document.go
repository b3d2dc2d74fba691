// Package domain holds the core entities of the prediction engine: the
// documents that make up the corpus, the case file a user submits, and the
// prediction the engine produces from the two.
package domain

import "time"

// SectionKind coarsely tags which part of a tribunal decision a chunk came
// from.
type SectionKind string

const (
	SectionBackground SectionKind = "background"
	SectionFacts      SectionKind = "facts"
	SectionReasoning  SectionKind = "reasoning"
	SectionDecision   SectionKind = "decision"
	SectionOther      SectionKind = "other"
)

// SourceType distinguishes a chunk's place in the legal hierarchy, mirroring
// the categories the corpus ingestion pipeline assigns.
type SourceType string

const (
	SourceRegulation  SourceType = "regulation"
	SourceAppeal      SourceType = "appeal_decision"
	SourcePrecedent   SourceType = "precedent_case"
)

// CaseDocument is one ingested tribunal decision. It is immutable once the
// Document Processor has produced it.
type CaseDocument struct {
	CaseReference string    `json:"case_reference"`
	Year          int       `json:"year"`
	Region        string    `json:"region"`
	CaseType      string    `json:"case_type"`
	FullText      string    `json:"full_text"`
	// Category is an optional informational classification of the source
	// PDF's directory (e.g. "deposit" vs "adjacent"); it never gates
	// retrieval or synthesis.
	Category  string    `json:"category,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

// DocumentChunk is a contiguous text window from exactly one CaseDocument.
// Every chunk's inherited metadata must always match its parent document.
type DocumentChunk struct {
	ChunkID       string      `json:"chunk_id"`
	CaseReference string      `json:"case_reference"`
	SectionKind   SectionKind `json:"section_kind"`
	Text          string      `json:"text"`
	TokenCount    int         `json:"token_count"`
	Year          int         `json:"year"`
	Region        string      `json:"region"`
	CaseType      string      `json:"case_type"`
	SourceType    SourceType  `json:"source_type,omitempty"`
}

// MatchesDocument reports whether the chunk's inherited metadata is
// consistent with its parent document, per the corpus-wide invariant that
// chunk.year == chunk.document.year and chunk.region == chunk.document.region.
func (c DocumentChunk) MatchesDocument(doc CaseDocument) bool {
	return c.CaseReference == doc.CaseReference &&
		c.Year == doc.Year &&
		c.Region == doc.Region
}
