package router

import "strings"

// Verb is an HTTP method. Any method string is a valid verb; VerbAny is the
// catch-all used when no exact verb is registered on a path.
type Verb string

const (
	VerbGet     Verb = "GET"
	VerbHead    Verb = "HEAD"
	VerbPost    Verb = "POST"
	VerbPut     Verb = "PUT"
	VerbPatch   Verb = "PATCH"
	VerbDelete  Verb = "DELETE"
	VerbOptions Verb = "OPTIONS"
	VerbAny     Verb = "ANY"
)

// ParseVerb normalizes a method name, e.g. "get" becomes VerbGet.
func ParseVerb(method string) Verb {
	return Verb(strings.ToUpper(strings.TrimSpace(method)))
}

// String returns the verb as a method name.
func (v Verb) String() string {
	return string(v)
}
