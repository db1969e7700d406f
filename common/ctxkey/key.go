package ctxkey

const (
	// RequestModel is the model identifier from the inbound envelope.
	// Set in: relay/adaptor/bedrock family ConvertRequest.
	// Read in: family Handler/StreamHandler to resolve the Bedrock model id.
	RequestModel = "request_model"

	// ConvertedRequest holds the family-specific request body built by
	// ConvertRequest, consumed by the matching Handler/StreamHandler.
	ConvertedRequest = "converted_request"

	// Meta caches the per-request *meta.Meta so it is only built once.
	Meta = "meta"

	// RequestBody caches the raw request body so it can be re-read after binding.
	RequestBody = "request_body"
)
