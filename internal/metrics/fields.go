package metrics

// Metric attribute keys.
const (
	AttrMethod = "method"
	AttrPath   = "path"
	AttrStatus = "status"
	AttrResult = "result"
)
