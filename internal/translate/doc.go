// Package translate turns comment text into a target language with a chat
// model, ten comments per request.
//
// Each request carries one cleaned line per comment and the reply is aligned
// back by position. Lines the model drops, and whole chunks that fail after
// retries, keep the original text so every input comment gets exactly one
// translation record.
package translate
