package handler

// callResult is the body of POST /xlwings/custom-functions-call.
type callResult struct {
	Result [][]any `json:"result"`
}
