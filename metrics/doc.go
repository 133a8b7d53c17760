// Package metrics exports Prometheus metrics for corpus scans and title
// searches.
//
// A Collector owns its own registry. Its ScanMonitor and SearchMonitor
// adapters plug into the scan and search packages, and Handler serves the
// registry in the Prometheus exposition format.
package metrics
