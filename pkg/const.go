package pkg

const (
	HeaderTraceId   string = "X-Trace-Id"
	HeaderRequestId string = "X-Request-Id"
)

const (
	TraceId   string = "trace_id"
	RequestId string = "request_id"
	AccountId string = "account_id"
	Reference string = "reference"
)

// MiniStatementSize is the maximum number of entries returned by a mini statement.
const MiniStatementSize = 20
