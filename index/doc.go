// Package index keeps title embeddings in an in-memory HNSW graph for
// approximate nearest neighbour search. A TitleIndex answers the same
// FindSimilar query as the song repository, but without scanning every
// record.
package index
