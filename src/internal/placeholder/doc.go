// Package placeholder substitutes ${key} tokens in declaration text.
//
// Values come from an ordered list of sources; the first source that defines
// a key wins. A token may carry a default, ${key:default}, used when no source
// defines the key. Substituted values are never scanned again, so a value that
// itself contains ${...} cannot trigger further expansion. $${ produces a
// literal ${.
//
// Source order used by the CLI:
//
//  1. explicit -P key=value flags, then -properties-file entries
//  2. the process environment
//  3. the document's own "properties" section
package placeholder
