package postgres

import "fmt"

// DefaultTable is the table used when no table name is configured.
const DefaultTable = "music_features"

func schemaStatements(table string, dims int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			path TEXT NOT NULL,
			title TEXT NOT NULL,
			creators TEXT[] NOT NULL DEFAULT '{}',
			key_signature TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL DEFAULT '',
			tempo DOUBLE PRECISION NOT NULL DEFAULT 0,
			average_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
			measures INTEGER NOT NULL DEFAULT 0,
			time_signatures TEXT[] NOT NULL DEFAULT '{}',
			chord_progressions TEXT[] NOT NULL DEFAULT '{}',
			feature_vector vector(%d),
			updated_ts TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, table, dims),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_title_idx ON %s (lower(title))`, table, table),
	}
}

func upsertStatement(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (id, path, title, creators, key_signature, mode, tempo,
			average_duration, measures, time_signatures, chord_progressions,
			feature_vector, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			path = EXCLUDED.path,
			title = EXCLUDED.title,
			creators = EXCLUDED.creators,
			key_signature = EXCLUDED.key_signature,
			mode = EXCLUDED.mode,
			tempo = EXCLUDED.tempo,
			average_duration = EXCLUDED.average_duration,
			measures = EXCLUDED.measures,
			time_signatures = EXCLUDED.time_signatures,
			chord_progressions = EXCLUDED.chord_progressions,
			feature_vector = EXCLUDED.feature_vector,
			updated_ts = EXCLUDED.updated_ts`, table)
}

func inputVectorsQuery(table string) string {
	return fmt.Sprintf(`
		SELECT id, feature_vector
		FROM %s
		WHERE lower(title) = ANY($1) AND feature_vector IS NOT NULL`, table)
}

func rankQuery(table string) string {
	return fmt.Sprintf(`
		SELECT id, path, title, creators, key_signature, mode, tempo,
			average_duration, measures, time_signatures, chord_progressions,
			feature_vector, 1 - (feature_vector <=> $1) AS score
		FROM %s
		WHERE feature_vector IS NOT NULL AND NOT (id = ANY($2))
		ORDER BY feature_vector <=> $1
		LIMIT $3`, table)
}
