// Package model holds the persisted match document for the snooker scorer.
//
// Every other internal package imports model; model imports nothing
// internal. The document shapes mirror the JSON format written to storage
// and produced by export:
//
//   - Match owns Frames
//   - Frame owns Breaks and points at its current break by index
//   - Break owns Shots
//   - players are referenced by index (0 or 1), never by pointer
//
// Frames also carry their action log. All derived frame fields (scores,
// table state, breaks) are a fold of that log, which is what makes undo a
// replay instead of an in-place edit.
package model
