package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), buf.String())
	return resp
}

func TestOutputFormatter_JSON(t *testing.T) {
	tests := []struct {
		name       string
		write      func(f *OutputFormatter) error
		wantStatus string
		wantCode   string
		wantData   bool
	}{
		{
			name:       "success",
			write:      func(f *OutputFormatter) error { return f.Success(map[string]int{"items": 3}) },
			wantStatus: StatusOK,
			wantData:   true,
		},
		{
			name:       "error",
			write:      func(f *OutputFormatter) error { return f.Error(ErrCodeNotFound, "catalog not found", nil) },
			wantStatus: StatusError,
			wantCode:   ErrCodeNotFound,
		},
		{
			name: "failure carries data",
			write: func(f *OutputFormatter) error {
				return f.Failure(ErrCodeValidationFailed, "validation failed with 1 critical issue(s)", map[string]int{"critical_issues": 1})
			},
			wantStatus: StatusError,
			wantCode:   ErrCodeValidationFailed,
			wantData:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, tt.write(&OutputFormatter{Format: "json", Writer: buf}))

			resp := decodeResponse(t, buf)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantData, resp.Data != nil)
			if tt.wantCode == "" {
				assert.Nil(t, resp.Error)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestOutputFormatter_JSONErrorDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error(ErrCodeLoadFailed, "decoding catalog", map[string]string{"file": "items.json"}))

	resp := decodeResponse(t, buf)
	require.NotNil(t, resp.Error)
	assert.Equal(t, map[string]any{"file": "items.json"}, resp.Error.Details)
}

func TestOutputFormatter_JSONDoesNotEscapeHTML(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"description": "<scoped> & deadly"}))
	assert.Contains(t, buf.String(), "<scoped> & deadly")
	assert.Contains(t, buf.String(), "\n  \"status\": \"ok\"")
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success("✓ Catalog is valid"))
	require.NoError(t, f.Error(ErrCodeNotFound, "catalog not found", map[string]string{"file": "items.json"}))
	require.NoError(t, f.Failure(ErrCodeValidationFailed, "validation failed with 2 critical issue(s)", nil))

	assert.Equal(t,
		"✓ Catalog is valid\n"+
			"Error [E005]: catalog not found\n"+
			"✗ validation failed with 2 critical issue(s)\n",
		buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, f.Error(ErrCodeNotFound, "catalog not found", "items.json"))
	assert.Contains(t, buf.String(), "Error [E005]: catalog not found\n")
	assert.Contains(t, buf.String(), "Details: items.json\n")
}

func TestOutputFormatter_Printf(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	f.Printf("Wrote catalog to %s\n", "items.json")
	assert.Empty(t, buf.String())

	f.Format = "text"
	f.Printf("Wrote catalog to %s\n", "items.json")
	assert.Equal(t, "Wrote catalog to items.json\n", buf.String())
}

func TestOutputFormatter_Verbosef(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		diag    bool
	}{
		{"quiet", false, true},
		{"verbose to diag", true, true},
		{"verbose to writer", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			diag := &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: out, Verbose: tt.verbose}
			if tt.diag {
				f.Diag = diag
			}

			f.Verbosef("Found %d metadata file(s)", 2)

			got := out.String() + diag.String()
			if !tt.verbose {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, "Found 2 metadata file(s)\n", got)
			if tt.diag {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("permission denied")
	err := fmt.Errorf("add: %w", &ExitError{Code: ExitCommandError, ErrCode: ErrCodeWriteFailed, Message: "writing catalog", Err: cause})

	assert.Equal(t, "add: E007: writing catalog: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(&ExitError{Code: ExitFailure, Message: "duplicate"}))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("unknown flag")))
}
