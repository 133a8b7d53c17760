// Package ingestion indexes corpus songs for title search and similarity.
//
// The Pipeline reads manifest paths in batches. Within a batch, songs are
// loaded and their feature vectors encoded concurrently on a worker pool.
// Titles are then embedded in a single rate-limited, retried request and
// the resulting records are upserted into the song repository, and
// optionally mirrored to a feature sink such as the postgres store.
//
// Unreadable or malformed files are reported and skipped. When a checkpoint
// repository is configured, the number of manifest entries processed is
// saved after each batch so an interrupted run resumes where it stopped.
package ingestion
