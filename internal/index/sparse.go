package index

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

// sparseDoc is the flat document shape indexed into bleve. Text is the only
// analyzed field; the rest are stored for retrieval-time filtering.
type sparseDoc struct {
	ChunkID       string `json:"chunk_id"`
	CaseReference string `json:"case_reference"`
	SectionKind   string `json:"section_kind"`
	Text          string `json:"text"`
	TokenCount    int    `json:"token_count"`
	Year          int    `json:"year"`
	Region        string `json:"region"`
	CaseType      string `json:"case_type"`
	SourceType    string `json:"source_type"`
}

// SparseStore is the lexical (BM25) store, backed by a bleve index on disk.
// Rebuilds are staged into a sibling directory and atomically swapped in via
// rename, so a reader never observes a half-built index.
type SparseStore struct {
	mu        sync.RWMutex
	path      string
	index     bleve.Index
}

func buildMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = "en"

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = "keyword"

	numericField := bleve.NewNumericFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("text", textField)
	doc.AddFieldMappingsAt("case_reference", keywordField)
	doc.AddFieldMappingsAt("section_kind", keywordField)
	doc.AddFieldMappingsAt("region", keywordField)
	doc.AddFieldMappingsAt("case_type", keywordField)
	doc.AddFieldMappingsAt("source_type", keywordField)
	doc.AddFieldMappingsAt("year", numericField)
	doc.AddFieldMappingsAt("token_count", numericField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// OpenSparseStore opens an existing bleve index at path, or creates one if
// absent.
func OpenSparseStore(path string) (*SparseStore, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, domain.NewError(domain.KindIndex, "OpenSparseStore", err)
	}
	return &SparseStore{path: path, index: idx}, nil
}

// Upsert indexes or reindexes a single chunk.
func (s *SparseStore) Upsert(chunk domain.DocumentChunk) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := toSparseDoc(chunk)
	if err := s.index.Index(chunk.ChunkID, doc); err != nil {
		return domain.NewError(domain.KindIndex, "SparseStore.Upsert", err)
	}
	return nil
}

func toSparseDoc(chunk domain.DocumentChunk) sparseDoc {
	return sparseDoc{
		ChunkID:       chunk.ChunkID,
		CaseReference: chunk.CaseReference,
		SectionKind:   string(chunk.SectionKind),
		Text:          chunk.Text,
		TokenCount:    chunk.TokenCount,
		Year:          chunk.Year,
		Region:        chunk.Region,
		CaseType:      chunk.CaseType,
		SourceType:    string(chunk.SourceType),
	}
}

// SparseHit is one lexical search result: the chunk id, its BM25 score as
// bleve reports it, and the full chunk reconstructed from the index's
// stored fields.
type SparseHit struct {
	Chunk domain.DocumentChunk
	Score float64
}

// Search runs a BM25 query over the text field, restricted by filter, and
// returns up to k hits ordered by descending score.
func (s *SparseStore) Search(queryText string, k int, filter Filter) ([]SparseHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	textQuery := bleve.NewMatchQuery(queryText)
	textQuery.SetField("text")

	query := bleve.NewConjunctionQuery(textQuery)
	if filter.MinYear > 0 {
		yq := bleve.NewNumericRangeQuery(float64Ptr(float64(filter.MinYear)), nil)
		yq.SetField("year")
		query.AddQuery(yq)
	}
	if filter.CaseType != "" {
		tq := bleve.NewTermQuery(filter.CaseType)
		tq.SetField("case_type")
		query.AddQuery(tq)
	}
	if filter.SectionKind != "" {
		tq := bleve.NewTermQuery(string(filter.SectionKind))
		tq.SetField("section_kind")
		query.AddQuery(tq)
	}
	if len(filter.Regions) > 0 {
		regionQuery := bleve.NewDisjunctionQuery()
		for _, r := range filter.Regions {
			tq := bleve.NewTermQuery(r)
			tq.SetField("region")
			regionQuery.AddQuery(tq)
		}
		query.AddQuery(regionQuery)
	}

	req := bleve.NewSearchRequestOptions(query, k, 0, false)
	req.Fields = []string{"chunk_id", "case_reference", "section_kind", "text", "token_count", "year", "region", "case_type", "source_type"}

	result, err := s.index.Search(req)
	if err != nil {
		return nil, domain.NewError(domain.KindIndex, "SparseStore.Search", err)
	}

	hits := make([]SparseHit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, SparseHit{
			Chunk: chunkFromFields(h.ID, h.Fields),
			Score: h.Score,
		})
	}
	return hits, nil
}

func chunkFromFields(id string, fields map[string]interface{}) domain.DocumentChunk {
	c := domain.DocumentChunk{ChunkID: id}
	if v, ok := fields["case_reference"].(string); ok {
		c.CaseReference = v
	}
	if v, ok := fields["section_kind"].(string); ok {
		c.SectionKind = domain.SectionKind(v)
	}
	if v, ok := fields["text"].(string); ok {
		c.Text = v
	}
	if v, ok := fields["region"].(string); ok {
		c.Region = v
	}
	if v, ok := fields["case_type"].(string); ok {
		c.CaseType = v
	}
	if v, ok := fields["source_type"].(string); ok {
		c.SourceType = domain.SourceType(v)
	}
	if v, ok := fields["year"].(float64); ok {
		c.Year = int(v)
	}
	if v, ok := fields["token_count"].(float64); ok {
		c.TokenCount = int(v)
	}
	return c
}

func float64Ptr(f float64) *float64 { return &f }

// DocCount returns the number of documents currently indexed.
func (s *SparseStore) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.index.DocCount()
	if err != nil {
		return 0, domain.NewError(domain.KindIndex, "SparseStore.DocCount", err)
	}
	return n, nil
}

// Close releases the underlying bleve index handle.
func (s *SparseStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Rebuild replaces the entire sparse index contents with chunks, building
// into a staging directory beside path and atomically renaming it into
// place on success. A crash mid-rebuild leaves the old index untouched.
func Rebuild(path string, chunks []domain.DocumentChunk) (*SparseStore, error) {
	stagingPath := path + ".staging-" + strconv.Itoa(os.Getpid())
	_ = os.RemoveAll(stagingPath)

	staged, err := bleve.New(stagingPath, buildMapping())
	if err != nil {
		return nil, domain.NewError(domain.KindIndex, "Rebuild", err)
	}

	batch := staged.NewBatch()
	for _, c := range chunks {
		if err := batch.Index(c.ChunkID, toSparseDoc(c)); err != nil {
			staged.Close()
			os.RemoveAll(stagingPath)
			return nil, domain.NewError(domain.KindIndex, "Rebuild", err)
		}
		if batch.Size() >= 500 {
			if err := staged.Batch(batch); err != nil {
				staged.Close()
				os.RemoveAll(stagingPath)
				return nil, domain.NewError(domain.KindIndex, "Rebuild", err)
			}
			batch = staged.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := staged.Batch(batch); err != nil {
			staged.Close()
			os.RemoveAll(stagingPath)
			return nil, domain.NewError(domain.KindIndex, "Rebuild", err)
		}
	}
	if err := staged.Close(); err != nil {
		return nil, domain.NewError(domain.KindIndex, "Rebuild", err)
	}

	backupPath := path + ".prev"
	os.RemoveAll(backupPath)
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, backupPath); err != nil {
			return nil, domain.NewError(domain.KindIndex, "Rebuild", fmt.Errorf("backing up old index: %w", err))
		}
	}
	if err := os.Rename(stagingPath, path); err != nil {
		if _, statErr := os.Stat(backupPath); statErr == nil {
			os.Rename(backupPath, path)
		}
		return nil, domain.NewError(domain.KindIndex, "Rebuild", fmt.Errorf("swapping in staged index: %w", err))
	}
	os.RemoveAll(backupPath)

	return OpenSparseStore(path)
}
