package bedrock

import (
	"strings"

	"bedrock-relay/relay/adaptor/bedrock/claude"
	"bedrock-relay/relay/adaptor/bedrock/llama"
	"bedrock-relay/relay/adaptor/bedrock/mistral"
	"bedrock-relay/relay/adaptor/bedrock/titan"
	"bedrock-relay/relay/adaptor/bedrock/utils"
)

type ModelFamily int

const (
	FamilyClaude ModelFamily = iota + 1
	FamilyTitan
	FamilyLlama
	FamilyMistral
)

// FamilyOf classifies a Bedrock model identifier by substring match. Model
// ids arrive raw (e.g. "anthropic.claude-3-sonnet-20240229-v1:0" or an
// inference-profile ARN), so matching is on the family marker rather than an
// allowlist of ids.
func FamilyOf(model string) ModelFamily {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "claude"):
		return FamilyClaude
	case strings.Contains(m, "titan"):
		return FamilyTitan
	case strings.Contains(m, "llama"):
		return FamilyLlama
	case strings.Contains(m, "mistral"), strings.Contains(m, "mixtral"):
		return FamilyMistral
	default:
		return 0
	}
}

// GetAdaptor returns the family adapter for a model id, or nil when the
// model belongs to no supported family.
func GetAdaptor(model string) utils.BedrockAdapter {
	switch FamilyOf(model) {
	case FamilyClaude:
		return &claude.Adaptor{}
	case FamilyTitan:
		return &titan.Adaptor{}
	case FamilyLlama:
		return &llama.Adaptor{}
	case FamilyMistral:
		return &mistral.Adaptor{}
	default:
		return nil
	}
}
