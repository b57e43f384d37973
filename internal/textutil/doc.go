// Package textutil provides text helpers shared by search, embedding, and
// organizing: Unicode case folding, tokenization, and path segment
// sanitizing.
//
// Tokenization folds case, splits on anything that is not a letter or digit,
// and drops single-rune tokens.
package textutil
