package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for post documents. Text fields use
// the English analyzer; owner_id is a keyword so it can be filtered exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName
	indexMapping.TypeField = "type"

	post := bleve.NewDocumentMapping()

	text := func(store bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = store
		return fm
	}

	post.AddFieldMappingsAt("title", text(true))
	post.AddFieldMappingsAt("detail", text(false))
	post.AddFieldMappingsAt("tags", text(true))
	post.AddFieldMappingsAt("sections", text(false))

	owner := bleve.NewKeywordFieldMapping()
	owner.Analyzer = keyword.Name
	post.AddFieldMappingsAt("owner_id", owner)

	post.AddFieldMappingsAt("visible", bleve.NewBooleanFieldMapping())

	typeField := bleve.NewKeywordFieldMapping()
	post.AddFieldMappingsAt("type", typeField)

	indexMapping.AddDocumentMapping("post", post)
	indexMapping.DefaultMapping = post

	return indexMapping
}
