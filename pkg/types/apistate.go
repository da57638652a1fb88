package types

// ApiState is the coarse per-dataset fetch state. Valuation is never fed
// from a dataset that is not OK; the affected panel degrades instead.
type ApiState string

const (
	ApiStateLoading = ApiState("LOADING")
	ApiStateOK      = ApiState("OK")
	ApiStateError   = ApiState("ERROR")
)
