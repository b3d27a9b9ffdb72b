// Package controller sequences user actions against the rules engine and
// owns the live match.
//
// The Controller is the single owner of application state: the match
// document, the frame phase, the frame timer and user settings. Every
// mutation goes through it, in order, on one goroutine. The only other
// goroutine is the display tick loop started by Run, which reads the
// timer and never touches the match.
//
// Phases follow the lifecycle of a frame:
//
//	NotStarted -> AwaitingPlayStart -> InPlay <-> Paused -> FrameComplete
//	FrameComplete -> NextFrameStarting -> AwaitingPlayStart
//	FrameComplete -> MatchComplete
//
// Shots are only accepted InPlay. Undo is accepted InPlay, Paused and
// AwaitingPlayStart, so a mistake can be corrected without restarting the
// clock. Every action carries an id and a repeated id is rejected, which
// guarantees one recorded shot per confirmed selection however often the
// UI delivers it.
//
// Persistence failures never roll back the match. They are logged,
// reported through the Notifier and the document is marked dirty so that
// Save can retry.
package controller
