// Package comments holds the comment and video data model and the pure
// functions that clean, filter, rank and classify comment lists.
//
// Nothing here performs I/O. Every function accepts nil or empty input and
// returns an empty result for it.
package comments
