// Package rules implements the snooker frame and match rules engine.
//
// The engine is a set of pure transitions over model documents. It never
// reads a clock and never performs I/O: every timestamp and elapsed time
// arrives on the model.Action being applied. This makes a frame a fold of
// its action log:
//
//	frame = Replay(header, log)
//
// and the same code path serves live recording and replay.
//
// # Undo
//
// Undo is not an in-place edit. Record appends an undo action to the log
// and rebuilds the frame by replaying the log with the undone shot (and any
// end_break actions after it) removed. Only the most recent UndoLimit
// shots can be undone; the limit is tracked on the frame as Undoable.
//
// # Sequencing quirks kept on purpose
//
// A color potted straight after the last red goes back on the table; only
// the next color potted starts permanent clearance. A potted free ball with
// reds remaining sequences like a red.
package rules
