package config

import (
	"strings"

	"bedrock-relay/common/env"
)

var (
	// DefaultRegion is the AWS region used when the caller does not forward one.
	DefaultRegion = strings.TrimSpace(env.String("BEDROCK_DEFAULT_REGION", "us-east-1"))

	// RelayTimeout bounds a single Bedrock invocation (seconds) before the
	// in-flight call is aborted via context cancellation.
	RelayTimeout = env.Int("RELAY_TIMEOUT", 600)

	// DefaultMaxToken is applied when the envelope carries no max_tokens.
	DefaultMaxToken = env.Int("DEFAULT_MAX_TOKEN", 2048)

	// LlamaProfileMode selects how the Llama inference profile is resolved:
	// "header" expects the caller to forward a ready-made profile identifier,
	// "arn" synthesizes an inference-profile ARN from region and model id.
	LlamaProfileMode = strings.TrimSpace(env.String("LLAMA_PROFILE_MODE", "header"))

	// LlamaProfileAccountID is the AWS account id embedded into synthesized
	// inference-profile ARNs. Only read in "arn" mode.
	LlamaProfileAccountID = strings.TrimSpace(env.String("LLAMA_PROFILE_ACCOUNT_ID", ""))

	// RelayTokens lists the provider keys accepted by the token authorizer,
	// comma separated. Empty disables authentication.
	RelayTokens = strings.TrimSpace(env.String("RELAY_TOKENS", ""))

	// DebugEnabled toggles verbose structured logging when DEBUG=true.
	DebugEnabled = env.Bool("DEBUG", false)

	// ServerPort overrides the --port flag when running inside container or PaaS environments.
	ServerPort = strings.TrimSpace(env.String("PORT", ""))
	// GinMode allows forcing Gin into release mode (or other modes) without recompiling.
	GinMode = strings.TrimSpace(env.String("GIN_MODE", ""))

	// EnablePrometheusMetrics exposes /metrics when true.
	EnablePrometheusMetrics = env.Bool("ENABLE_PROMETHEUS_METRICS", false)

	// ShutdownTimeoutSec specifies the graceful shutdown timeout (seconds) for the HTTP server.
	ShutdownTimeoutSec = env.Int("SHUTDOWN_TIMEOUT", 30)
)
