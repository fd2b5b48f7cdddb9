package httpserver

const (
	ErrBadForm    = "bad form"
	ErrDependency = "dependency error"
	ErrNotFound   = "not found"
)
