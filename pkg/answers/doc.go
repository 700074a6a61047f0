// Package answers holds the in-progress AnswerSet of a form fill and the
// session object that carries it between render and submit.
package answers
