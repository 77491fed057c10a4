package codegen

// OperationDescriptor is one callable operation discovered on a peer.
//
// Name is the wire-level identifier and is never altered; schemas are kept
// as decoded (booleans, *schema.Object or plain maps) and sanitized later.
type OperationDescriptor struct {
	Name         string `json:"name"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	InputSchema  any    `json:"inputSchema"`
	OutputSchema any    `json:"outputSchema,omitempty"`
}

// Peer carries the per-batch identity and network configuration embedded in
// a generated client.
type Peer struct {
	// Identity is the peer's public key.
	Identity string
	// Name is the base name for the generated declared type and client class.
	Name string
	// Credential is an optional private key embedded as an overridable default.
	Credential string
	// Endpoints are relay URLs; DefaultEndpoints is used when empty.
	Endpoints []string
}

// DefaultEndpoints is embedded when a Peer lists no endpoints.
var DefaultEndpoints = []string{"wss://relay.contextvm.org"}

// ToolInfo holds the names derived from an operation's wire name.
type ToolInfo struct {
	OriginalName   string
	PascalName     string
	InputTypeName  string
	OutputTypeName string
	// MethodName is the client method name. It equals PascalName unless
	// another operation in the batch already claimed that name.
	MethodName string
}

// TypeDeclaration is one named TypeScript declaration block.
type TypeDeclaration struct {
	Name string
	Text string
}

// MethodPlan is the generated calling convention for one operation.
type MethodPlan struct {
	// ParameterList is the method's parameter list without parentheses.
	ParameterList string
	// CallBody is the single statement dispatching the call.
	CallBody string
	// InterfaceSignature is the member line of the declared interface type.
	InterfaceSignature string
	// Method is the full class method including its JSDoc block.
	Method string
	// Individual reports the "individual parameters" convention.
	Individual bool
}

// ClientModule is the assembled output of one generation request.
type ClientModule struct {
	ServerName   string
	ClientName   string
	Declarations []TypeDeclaration
	ServerType   string
	CallMethod   string
	Methods      []string
	// Warnings lists silently recovered problems, such as dropped same-named
	// declarations whose text differed.
	Warnings []string
	Source   string
}
