// Package typecheck holds the file that compiler tests overlay with generated
// code in order to type-check it.
package typecheck
