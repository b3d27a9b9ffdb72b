// Package harness runs conformance scenarios against the rules engine.
//
// A scenario sets up a match, plays a flow of actions through
// rules.Engine and checks the final state with assertions. Every step is
// recorded in a trace that can be compared with a golden file, so a
// change in scoring behaviour shows up as a readable diff.
//
// # Scenario Format
//
//	name: foul_and_free_ball
//	description: "A foul hands the opponent a free ball"
//	match:
//	  players: [Ronnie, Judd]
//	  best_of: 3
//	  reds: 15
//	flow:
//	  - action: pot
//	    ball: red
//	    repeat: 2
//	  - action: foul
//	    ball: red
//	    points: 4
//	    free_ball: true
//	    expect:
//	      scores: [2, 4]
//	  - action: pot
//	    ball: pink
//	    expect:
//	      error: BALL_NOT_ON_TABLE
//	assertions:
//	  - type: frame_state
//	    frame: 1
//	    expect: { reds_remaining: 13, active_player: 1 }
//	  - type: player_stats
//	    player: 0
//	    expect: { fouls: 1 }
//
// Actions are pot, miss, safety, foul, end_break, end_frame, undo and
// next_frame. A step without an expect clause must succeed.
//
// # Assertion Types
//
//   - frame_state: fields of a frame (frame 0 means the current one)
//   - match_state: status, winner, frames won
//   - player_stats: replayed statistics and rates for one player
//   - next_balls: the legal balls on the current frame
//   - trace_count: how many times an action was accepted
//   - replay: every frame rebuilds identically from its log
//
// # Deterministic Testing
//
// Actions are stamped by testutil.Script, ten seconds apart from
// testutil.Epoch, and the match id is fixed, so two runs of a scenario
// produce byte-identical traces.
package harness
