package cbt

// HeaderError is returned from [*Tree.LoadWords]
// when the words do not describe a valid tree.
type HeaderError struct {
	Reason string
}

func (e HeaderError) Error() string {
	return "invalid tree header: " + e.Reason
}
