package helper

import (
	"fmt"

	"bedrock-relay/common/random"
)

const RequestIdKey = "X-Relay-Request-Id"

func GenRequestID() string {
	return GetTimeString() + random.GetRandomNumberString(8)
}

func MessageWithRequestId(message string, id string) string {
	return fmt.Sprintf("%s (request id: %s)", message, id)
}
