// Package chunker implements the Legal Chunker: splitting a cleaned
// CaseDocument into section-aware, token-bounded DocumentChunks with overlap.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tenancydeposit/tribunalrag/internal/config"
	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/tokenizer"
)

// sectionPattern pairs a case-insensitive header regex with the section it
// introduces. Patterns are tried in order; the first to match a line wins.
type sectionPattern struct {
	re   *regexp.Regexp
	kind domain.SectionKind
}

var sectionPatterns = []sectionPattern{
	{regexp.MustCompile(`(?i)^\s*(background|introduction)\b`), domain.SectionBackground},
	{regexp.MustCompile(`(?i)^\s*(the facts|findings of fact)\b`), domain.SectionFacts},
	{regexp.MustCompile(`(?i)^\s*(reasons|discussion)\b`), domain.SectionReasoning},
	{regexp.MustCompile(`(?i)^\s*(decision|determination|order)\b`), domain.SectionDecision},
}

// Chunker splits documents into DocumentChunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	maxChunkSize int
}

func New(cfg config.ChunkingConfig) *Chunker {
	return &Chunker{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		maxChunkSize: cfg.MaxChunkSize,
	}
}

// section is one detected span of text and the kind of header that started it.
type section struct {
	kind domain.SectionKind
	text strings.Builder
}

// detectSections runs the first pass: splitting text into section-tagged
// spans. Text before the first recognized header is tagged "other".
func detectSections(text string) []section {
	lines := strings.Split(text, "\n")
	sections := []section{{kind: domain.SectionOther}}

	for _, line := range lines {
		matched := false
		for _, p := range sectionPatterns {
			if p.re.MatchString(line) {
				sections = append(sections, section{kind: p.kind})
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		cur := &sections[len(sections)-1]
		cur.text.WriteString(line)
		cur.text.WriteByte('\n')
	}
	return sections
}

// Chunk splits doc's full text into section-aware, token-bounded chunks with
// suffix→prefix overlap between adjacent chunks of the same section. Chunks
// never cross section boundaries; each inherits doc's metadata.
func (c *Chunker) Chunk(doc domain.CaseDocument) []domain.DocumentChunk {
	sections := detectSections(doc.FullText)

	var chunks []domain.DocumentChunk
	index := 0
	for _, s := range sections {
		text := strings.TrimSpace(s.text.String())
		if text == "" {
			continue
		}
		for _, piece := range c.splitSection(text) {
			chunks = append(chunks, domain.DocumentChunk{
				ChunkID:       fmt.Sprintf("%s_%04d", doc.CaseReference, index),
				CaseReference: doc.CaseReference,
				SectionKind:   s.kind,
				Text:          piece,
				TokenCount:    tokenizer.Count(piece),
				Year:          doc.Year,
				Region:        doc.Region,
				CaseType:      doc.CaseType,
			})
			index++
		}
	}
	return chunks
}

// splitSection runs the second pass over one section's text: windows of
// ≤chunkSize tokens, each overlapping the previous window's suffix by
// chunkOverlap tokens, measured in the same word-based tokenizer used
// throughout.
func (c *Chunker) splitSection(text string) []string {
	words := tokenizer.Words(text)
	if len(words) == 0 {
		return nil
	}

	size := c.chunkSize
	if size > c.maxChunkSize && c.maxChunkSize > 0 {
		size = c.maxChunkSize
	}
	if size <= 0 {
		size = len(words)
	}
	step := size - c.chunkOverlap
	if step <= 0 {
		step = size
	}

	var pieces []string
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return pieces
}
