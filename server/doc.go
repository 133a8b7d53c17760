// Package server exposes title search, similar-song lookup and pattern
// matching over HTTP.
//
//	GET  /search?query=&max_results=   JSON array of titles
//	POST /similar {input_titles, top_n} ranked songs, 404 when nothing matches
//	POST /match   {notes, paths}        pattern scan over the corpus
//	GET  /metrics                       Prometheus metrics
//	GET  /healthz                       liveness
package server
