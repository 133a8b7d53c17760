// Package corpus reads the song corpus from disk.
//
// Corpus files are PDMX-style JSON documents, one song per file. Songs are
// addressed by manifest paths such as "./data/a/b.json"; ResolvePath strips
// the leading dots and places the remainder under a configured data root,
// refusing paths that would escape it.
// A manifest is a CSV file with a "path" column listing the files to scan.
package corpus
