// Package similarity decides whether two normalized caption readings are the
// same sentence. Short strings must match exactly; longer ones tolerate a
// bounded number of character-level recognition errors.
package similarity
