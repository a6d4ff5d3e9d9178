package observability

// Semantic conventions for observability attributes.
// These constants keep attribute, span and metric names consistent between
// the generation engine, the backend adapters and the app pipeline.

// --- LLM Backend Attributes ---

const (
	// AttrLLMProvider is the backend kind ("google", "openai", "anthropic")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier sent to the backend
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the response identifier reported by the backend
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMMaxTokens is the maximum tokens allowed
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMNativeJSON is true when constrained JSON output was requested
	AttrLLMNativeJSON = "llm.native_json"

	// AttrLLMPrefilled is true when the reply was seeded with "{"
	AttrLLMPrefilled = "llm.prefilled"
)

// --- Generation Attributes ---

const (
	// AttrGenerateRequestID is the id assigned to one Generate call
	AttrGenerateRequestID = "generate.request_id"

	// AttrGeneratePromptLength is the length of the composed prompt
	AttrGeneratePromptLength = "generate.prompt.length"

	// AttrGenerateResponseLength is the length of the raw completion text
	AttrGenerateResponseLength = "generate.response.length"

	// AttrGenerateState is the state the call reached
	AttrGenerateState = "generate.state"

	// AttrGenerateOutcome is "success" or the failure class
	AttrGenerateOutcome = "generate.outcome"

	// AttrExtractStrategy is the strategy that produced the candidate
	AttrExtractStrategy = "extract.strategy"

	// AttrExtractFound is false when no candidate was recovered
	AttrExtractFound = "extract.found"

	// AttrValidationViolations is the number of schema violations
	AttrValidationViolations = "validation.violations"
)

// --- Pipeline Attributes ---

const (
	// AttrAppName is the generated application's name
	AttrAppName = "app.name"

	// AttrAppFilePath is the path of a planned file
	AttrAppFilePath = "app.file.path"

	// AttrAppFilesCount is the number of planned files
	AttrAppFilesCount = "app.files.count"

	// AttrAppDir is the directory the application was written to
	AttrAppDir = "app.dir"

	// AttrCommand is an external command run by the operator
	AttrCommand = "command"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error type/class
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"
)

// --- Span Names ---

const (
	// SpanGenerate wraps one structured generation call
	SpanGenerate = "generate"

	// SpanLLMRequest is the span name for backend requests
	SpanLLMRequest = "llm.request"

	// SpanArchitectDesign wraps the planning stage
	SpanArchitectDesign = "architect.design"

	// SpanEngineerBuild wraps the per-file code stage
	SpanEngineerBuild = "engineer.build"
)

// --- Event Names ---

const (
	EventLLMRequestStart = "llm.request.start"
	EventLLMRequestEnd   = "llm.request.end"

	// EventStatePrefix prefixes a state transition event, e.g. "state.sanitized"
	EventStatePrefix = "state."
)

// --- Metric Names ---

const (
	// MetricGenerateCount counts Generate calls by outcome
	MetricGenerateCount = "replicator.generate.count"

	// MetricGenerateDuration is the histogram of Generate latency in milliseconds
	MetricGenerateDuration = "replicator.generate.duration"

	// MetricExtractStrategy counts which strategy recovered the instance
	MetricExtractStrategy = "replicator.extract.strategy"

	// MetricLLMRequestCount counts backend requests
	MetricLLMRequestCount = "replicator.llm.request.count"

	// MetricLLMRequestDuration is the histogram of backend latency in milliseconds
	MetricLLMRequestDuration = "replicator.llm.request.duration"

	// MetricFilesGenerated counts files the engineer filled
	MetricFilesGenerated = "replicator.files.generated"
)
