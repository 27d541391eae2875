package console

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"bmi-client/internal/bmi"
	"bmi-client/internal/client"
	"bmi-client/internal/coordinator"
	"bmi-client/internal/testutil"
)

func TestSucceededWritesSummaryToOut(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&out, &errOut)

	c.OnOperationStarted()
	c.OnOperationSucceeded("Server response:\n{}\n\nBMI: 20.00")
	c.OnOperationFinished()

	select {
	case <-c.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
	if c.Err() != nil {
		t.Fatalf("expected no error, got %v", c.Err())
	}
	if got := out.String(); got != "Server response:\n{}\n\nBMI: 20.00\n" {
		t.Fatalf("unexpected stdout %q", got)
	}
	if got := errOut.String(); got != "Sending request...\nDone\n" {
		t.Fatalf("unexpected stderr %q", got)
	}
}

func TestFailedWrapsErrFailed(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&out, &errOut)

	c.OnOperationFailed("No response from server.")
	c.OnOperationFinished()
	c.OnOperationFinished()

	if !errors.Is(c.Err(), ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", c.Err())
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "No response from server.") {
		t.Fatalf("expected message on stderr, got %q", errOut.String())
	}
}

func TestValidationErrorFinishes(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(&out, &errOut)

	verr := &bmi.ValidationError{Kind: bmi.NonPositive, Field: bmi.FieldHeight, Value: "0"}
	c.OnValidationError(verr)

	select {
	case <-c.Done():
	default:
		t.Fatal("expected Done to be closed")
	}

	var got *bmi.ValidationError
	if !errors.As(c.Err(), &got) || got.Kind != bmi.NonPositive {
		t.Fatalf("expected validation error, got %v", c.Err())
	}
	if errOut.String() != "Invalid input: Values must be greater than zero.\n" {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
}

func TestOneShotAgainstService(t *testing.T) {
	srv := testutil.NewBMIServer(t, testutil.RespondJSON(http.StatusBadRequest, `{"error": "height must be positive"}`))

	coord := coordinator.New(client.New(), srv.Endpoint(), coordinator.WithTimeouts(time.Second, time.Second))
	var out, errOut bytes.Buffer
	c := New(&out, &errOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go coord.Run(ctx, c)

	if err := coord.Trigger(ctx, "70", "175"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the operation")
	}

	if c.Err() != nil {
		t.Fatalf("an error body is still a response, got %v", c.Err())
	}
	if !strings.Contains(out.String(), "Server error (HTTP 400): height must be positive") {
		t.Fatalf("expected server error line, got %q", out.String())
	}
}
