// Package registry maps (subject, reference) pairs to the single value
// responsible for them, so the same pair is never tracked twice.
//
// Subjects get a process-unique numeric tag the first time they are
// registered. Types that embed Identity keep the tag on themselves; any other
// comparable subject is tagged through a reference-counted side table that
// forgets the subject once no registered key uses it.
package registry
