package utils

import (
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
)

// Inference-profile resolution policies. Some model families (Llama) can only
// be invoked through a provisioned inference profile; the two policies below
// reflect the two ways a deployment can supply one.
const (
	// ProfileModeHeader expects the caller to forward a ready-made
	// inference-profile identifier with the request.
	ProfileModeHeader = "header"
	// ProfileModeARN synthesizes an inference-profile ARN from the region,
	// a configured account id, and the model id.
	ProfileModeARN = "arn"
)

var ErrInvalidInferenceProfile = errors.New(
	`invalid inference profile identifier: expected it to contain "inference"`)

const missingProfileRemediation = `an inference profile is required to invoke Llama models on Bedrock.

Either forward a provisioned inference-profile identifier in the
X-Inference-Profile header, or configure the relay with
LLAMA_PROFILE_MODE=arn and LLAMA_PROFILE_ACCOUNT_ID so it can synthesize
the profile ARN itself.`

// ResolveInferenceProfile returns the identifier to invoke the model with
// under the given policy. It never performs network IO, so a missing profile
// fails before any upstream call is attempted.
func ResolveInferenceProfile(mode, headerProfile, region, accountID, modelID string) (string, error) {
	switch mode {
	case ProfileModeHeader:
		if headerProfile == "" {
			return "", errors.New(missingProfileRemediation)
		}
		if !strings.Contains(headerProfile, "inference") {
			return "", errors.Wrap(ErrInvalidInferenceProfile, headerProfile)
		}
		return headerProfile, nil

	case ProfileModeARN:
		if accountID == "" {
			return "", errors.New(missingProfileRemediation)
		}
		prefix := GetRegionPrefix(region)
		if prefix == "" {
			prefix = "us"
		}
		return fmt.Sprintf("arn:aws:bedrock:%s:%s:inference-profile/%s.%s",
			region, accountID, prefix, modelID), nil

	default:
		return "", errors.Errorf("unknown inference profile mode %q", mode)
	}
}

// GetRegionPrefix maps an AWS region to the geography prefix used by
// cross-region inference profiles.
func GetRegionPrefix(region string) string {
	switch {
	case strings.HasPrefix(region, "us-gov-"):
		return "us-gov"
	case strings.HasPrefix(region, "us-"),
		strings.HasPrefix(region, "ca-"),
		strings.HasPrefix(region, "sa-"):
		return "us"
	case strings.HasPrefix(region, "eu-"):
		return "eu"
	case strings.HasPrefix(region, "ap-northeast-1"):
		return "jp"
	case strings.HasPrefix(region, "ap-"):
		return "apac"
	default:
		return ""
	}
}
