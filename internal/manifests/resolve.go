package manifests

// surrogateIDLength is the length of a generated manifest id token.
const surrogateIDLength = 36

// hyphen positions within a generated id token.
var surrogateSeparators = [...]int{8, 13, 18, 23}

// IsSurrogateID reports whether an external identifier is structurally
// a generated surrogate id (fixed-length token with separators) rather
// than a human-assigned manifest reference. The check is purely
// structural and independent of store contents.
//
// This is a heuristic: a human reference that happens to take the same
// shape would be misrouted to the id lookup. Known fragility, kept
// deliberately.
func IsSurrogateID(s string) bool {
	if len(s) != surrogateIDLength {
		return false
	}
	for _, i := range surrogateSeparators {
		if s[i] != '-' {
			return false
		}
	}
	return true
}
