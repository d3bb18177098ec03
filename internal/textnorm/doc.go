// Package textnorm cleans raw recognition output before it is compared or
// stored: noise characters are stripped and a data-driven correction table is
// applied.
package textnorm
