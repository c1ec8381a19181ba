package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span names for the three call-chain hops this repository traces.
const (
	SpanCoordinatorDispatch = "coordinator.dispatch"
	SpanClientCoordinator   = "client.call_coordinator"
	SpanClientStorage       = "client.call_storage"
)

// Attribute keys, trimmed from the teacher's protocol-agnostic set
// (tracer.go) to the fields netdoc's wire.Message actually carries.
const (
	AttrRequestType = "netdoc.request_type"
	AttrUsername    = "netdoc.username"
	AttrFileName    = "netdoc.file_name"
	AttrSession     = "netdoc.session"
	AttrNodeAddress = "netdoc.node_address"
)

func RequestType(t string) attribute.KeyValue { return attribute.String(AttrRequestType, t) }
func Username(name string) attribute.KeyValue { return attribute.String(AttrUsername, name) }
func FileName(name string) attribute.KeyValue { return attribute.String(AttrFileName, name) }
func Session(id string) attribute.KeyValue    { return attribute.String(AttrSession, id) }
func NodeAddress(addr string) attribute.KeyValue {
	return attribute.String(AttrNodeAddress, addr)
}
