package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunValidateCleanStream(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"RUN_STARTED","threadId":"t","runId":"r"}`,
		`{"type":"TEXT_MESSAGE_START","messageId":"m1"}`,
		`{"type":"TEXT_MESSAGE_CONTENT","messageId":"m1","delta":"hi"}`,
		`{"type":"TEXT_MESSAGE_END","messageId":"m1"}`,
		`{"type":"RUN_FINISHED","threadId":"t","runId":"r"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runValidate(&out, strings.NewReader(input)); err != nil {
		t.Fatalf("clean stream failed validation: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "5 events") {
		t.Errorf("summary missing event count: %s", out.String())
	}
}

func TestRunValidateReportsViolations(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"RUN_STARTED","threadId":"t","runId":"r"}`,
		`{"type":"TOOL_CALL_ARGS","toolCallId":"ghost","delta":"{}"}`,
		`{"type":"TEXT_MESSAGE_START","messageId":"m1"}`,
		`{"type":"RUN_FINISHED","threadId":"t","runId":"r"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	err := runValidate(&out, strings.NewReader(input))
	if err == nil {
		t.Fatalf("violations must fail the command:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "ghost") {
		t.Errorf("output missing the offending id: %s", out.String())
	}
}
