package types

// Source is a single retrieval hit cited by a chat answer.
type Source struct {
	SegmentPosition *int     `json:"segment_position,omitempty"`
	DatasetID       string   `json:"dataset_id"`
	DocumentID      string   `json:"document_id"`
	Content         string   `json:"content"`
	WordCount       int      `json:"word_count"`
	HitCount        int      `json:"hit_count"`
	IndexNodeHash   *string  `json:"index_node_hash,omitempty"`
	Score           *float64 `json:"score,omitempty"`
}

// Resources groups the citation hits of one document for rendering in the
// chat transcript's citation popup. Purely consumed, never mutated.
type Resources struct {
	DocumentName   string   `json:"document_name"`
	DataSourceType string   `json:"data_source_type"`
	Sources        []Source `json:"sources"`
}

// GroupSources partitions hits by document, preserving first-seen document
// order and per-document hit order.
func GroupSources(dataSourceType string, names map[string]string, sources []Source) []Resources {
	var out []Resources
	index := make(map[string]int)
	for _, src := range sources {
		i, ok := index[src.DocumentID]
		if !ok {
			i = len(out)
			index[src.DocumentID] = i
			out = append(out, Resources{
				DocumentName:   names[src.DocumentID],
				DataSourceType: dataSourceType,
			})
		}
		out[i].Sources = append(out[i].Sources, src)
	}
	return out
}
