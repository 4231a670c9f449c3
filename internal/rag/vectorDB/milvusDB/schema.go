package milvusDB

import "github.com/akolanti/DocRagAPI/internal/config"

// collectionSchema describes the chunk collection: a dense embedding field,
// a sparse lexical field populated server-side by a BM25 function over the
// chunk text, and the metadata needed to build source references.
func collectionSchema() map[string]any {
	return map[string]any{
		"autoId":             false,
		"enableDynamicField": false,
		"fields": []map[string]any{
			{
				"fieldName": "chunk_id",
				"dataType":  "VarChar",
				"isPrimary": true,
				"elementTypeParams": map[string]any{
					"max_length": 64,
				},
			},
			{
				"fieldName": "file_id",
				"dataType":  "VarChar",
				"elementTypeParams": map[string]any{
					"max_length": 64,
				},
			},
			{
				"fieldName": "filename",
				"dataType":  "VarChar",
				"elementTypeParams": map[string]any{
					"max_length": 512,
				},
			},
			{
				"fieldName": "title",
				"dataType":  "VarChar",
				"elementTypeParams": map[string]any{
					"max_length": 512,
				},
			},
			{
				"fieldName": "page",
				"dataType":  "Int64",
			},
			{
				"fieldName": "chunk_index",
				"dataType":  "Int64",
			},
			{
				"fieldName": "source",
				"dataType":  "VarChar",
				"elementTypeParams": map[string]any{
					"max_length": 1024,
				},
			},
			{
				"fieldName": "text",
				"dataType":  "VarChar",
				"elementTypeParams": map[string]any{
					"max_length":      65535,
					"enable_analyzer": true,
				},
			},
			{
				"fieldName": "sparse_vector",
				"dataType":  "SparseFloatVector",
			},
			{
				"fieldName": "vector",
				"dataType":  "FloatVector",
				"elementTypeParams": map[string]any{
					"dim": config.EmbeddingOutputDimensionality,
				},
			},
		},
		"functions": []map[string]any{
			{
				"name":             "text_bm25",
				"type":             "BM25",
				"inputFieldNames":  []string{"text"},
				"outputFieldNames": []string{"sparse_vector"},
			},
		},
	}
}

func indexParams() []map[string]any {
	return []map[string]any{
		{
			"fieldName":  "vector",
			"indexName":  "vector_index",
			"metricType": "COSINE",
			"indexType":  "HNSW",
			"params": map[string]any{
				"M":              16,
				"efConstruction": 200,
			},
		},
		{
			"fieldName":  "sparse_vector",
			"indexName":  "sparse_index",
			"metricType": "BM25",
			"indexType":  "SPARSE_INVERTED_INDEX",
		},
	}
}
