// Package summary selects comments by strategy and turns them into a
// five-part audience report with a chat model.
//
// Inputs up to Threshold comments go out in one request. Larger inputs are
// split into contiguous batches, summarized sequentially or with bounded
// parallelism, and merged: one surviving batch is used verbatim, several are
// merged by a further model call, and a failed merge falls back to the
// labeled batch reports concatenated.
//
// ParseSections is a lenient, heuristic parser for the model's free text. Its
// fallback chain is pinned by tests rather than by a grammar.
package summary
