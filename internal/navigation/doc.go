// Package navigation owns the sequence of built samples and the cursor the
// viewers move through it.
//
// A [State] starts Empty. [State.BeginLoad] runs a build function on a
// single background goroutine and moves to Loading. The render loop calls
// [State.Poll] once per frame; the first poll after the build finishes
// installs the new sequence, resets the cursor and moves to Ready.
//
// # Thread Safety
//
// A State is meant for one render goroutine plus the load worker it
// spawns. The worker only ever writes its result to a one slot channel,
// so the render goroutine never blocks on it beyond the poll timeout.
package navigation
