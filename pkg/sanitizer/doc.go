// Package sanitizer normalizes booking input before validation and storage.
//
// Every function is idempotent: applying it twice gives the same result as
// applying it once. Invalid input is never an error here; validation decides.
package sanitizer
