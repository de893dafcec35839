package events

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateRunID generates a unique run identifier
func GenerateRunID() string {
	return fmt.Sprintf("run-%s", uuid.New().String())
}

// GenerateThreadID generates a unique thread identifier
func GenerateThreadID() string {
	return fmt.Sprintf("thread-%s", uuid.New().String())
}

// GenerateMessageID generates a unique message identifier
func GenerateMessageID() string {
	return fmt.Sprintf("msg-%s", uuid.New().String())
}

// GenerateToolCallID generates a unique tool call identifier
func GenerateToolCallID() string {
	return fmt.Sprintf("call-%s", uuid.New().String())
}

// GenerateStepID generates a unique step identifier
func GenerateStepID() string {
	return fmt.Sprintf("step-%s", uuid.New().String())
}
