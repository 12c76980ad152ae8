// Package collector walks the paginated comment threads of one video.
//
// A run fetches metadata once, then follows page cursors until the source
// reports no next page or MaxPages is reached. Every upstream call goes
// through retry.Do; a page that still fails ends the run early with
// Result.Partial set and a non-fatal error event, keeping what was already
// collected. Progress is reported on the 0-75 band of the enclosing job so
// the later stages can fill the rest.
package collector
