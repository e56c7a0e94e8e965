package metrics

import "github.com/prometheus/client_golang/prometheus"

// Label constants.
const (
	Method    = "method"
	Code      = "code"
	Tool      = "tool"
	Operation = "operation"
	Status    = "status"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// RPCRequestsTotal Total number of JSON-RPC requests received.
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_requests_total",
			Help: "Total number of JSON-RPC requests received",
		},
		[]string{Method},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// RPCErrorsTotal Total number of JSON-RPC error responses.
	RPCErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_errors_total",
			Help: "Total number of JSON-RPC error responses",
		},
		[]string{Code},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// ToolExecutionsTotal Total number of tool executions.
	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{Tool, Status},
	)

	//nolint:gochecknoglobals // This is how the prometheus magic works.
	// EngineCallsTotal Total number of calls to the container engine.
	EngineCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_calls_total",
			Help: "Total number of calls to the container engine",
		},
		[]string{Operation, Status},
	)
)

//nolint:gochecknoinits // This is how the prometheus magic works.
func init() {
	_ = prometheus.Register(RPCRequestsTotal)
	_ = prometheus.Register(RPCErrorsTotal)
	_ = prometheus.Register(ToolExecutionsTotal)
	_ = prometheus.Register(EngineCallsTotal)
}
