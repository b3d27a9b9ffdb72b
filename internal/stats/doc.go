// Package stats derives per-player statistics from match documents.
//
// Nothing here is incremental. Every figure is computed by walking the
// frames, breaks and shots of the document, so statistics cannot drift
// from the data after an undo or a replay.
package stats
