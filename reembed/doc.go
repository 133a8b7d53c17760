// Package reembed recomputes the title embeddings of stored songs, for
// example after switching embedding models.
//
// Songs are walked in ID order in batches. Each batch is embedded with
// retry and exponential backoff, normalized to unit length and written
// back. Progress is checkpointed so an interrupted run can resume.
package reembed
