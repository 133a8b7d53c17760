// Package postgres mirrors indexed songs into a PostgreSQL table with a
// pgvector column and answers similar-song queries there.
//
// The table layout follows the music_features table used by the hosted
// search service:
//
//	music_features(id, path, title, creators, key_signature, mode, tempo,
//	               average_duration, measures, time_signatures,
//	               chord_progressions, feature_vector vector(128), updated_ts)
//
// Ranking uses the pgvector cosine distance operator <=>.
package postgres
