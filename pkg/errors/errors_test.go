// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/deliveryman/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "release not found",
			wantStr: "[NOT_FOUND] release not found",
		},
		{
			name:    "protected_error",
			code:    errors.ErrCurrentReleaseProtected,
			message: "release is current",
			wantStr: "[CURRENT_RELEASE_PROTECTED] release is current",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnsupportedArchiveType, "unsupported archive type %q", "rar")
	if err.Message != `unsupported archive type "rar"` {
		t.Errorf("Newf() message = %q", err.Message)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("permission denied")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrRemoteOperation, "mkdir failed")

		if err.Wrapped != baseErr {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[REMOTE_OPERATION_FAILED] mkdir failed: permission denied"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrInternal, "internal error"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if err := errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"); err != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})
}

func TestRemote(t *testing.T) {
	t.Run("nil_passes_through", func(t *testing.T) {
		if err := errors.Remote(nil, "mkdir", "/srv/app"); err != nil {
			t.Errorf("Remote(nil) = %v, want nil", err)
		}
	})

	t.Run("plain_error_is_wrapped_with_context", func(t *testing.T) {
		err := errors.Remote(stderrors.New("no such file"), "rename", "/srv/app/shared/uploads")

		if !errors.IsErrorCode(err, errors.ErrRemoteOperation) {
			t.Fatalf("Remote() code = %v, want %v", errors.GetErrorCode(err), errors.ErrRemoteOperation)
		}
		details := errors.GetErrorDetails(err)
		if details["operation"] != "rename" || details["path"] != "/srv/app/shared/uploads" {
			t.Errorf("Remote() details = %v", details)
		}
	})

	t.Run("coded_error_keeps_its_kind", func(t *testing.T) {
		conn := errors.New(errors.ErrConnectivity, "ssh handshake failed")
		err := errors.Remote(conn, "stat", "/srv/app")
		if !errors.IsErrorCode(err, errors.ErrConnectivity) {
			t.Errorf("Remote() code = %v, want %v", errors.GetErrorCode(err), errors.ErrConnectivity)
		}
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrNotFound, "not found").
		WithDetail("path", "/srv/app/releases/42").
		WithDetail("release", "42")

	if err.Details["path"] != "/srv/app/releases/42" {
		t.Errorf("WithDetail() path = %v", err.Details["path"])
	}
	if err.Details["release"] != "42" {
		t.Errorf("WithDetail() release = %v", err.Details["release"])
	}

	err = err.WithDetails(map[string]interface{}{"operation": "select"})
	if len(err.Details) != 3 {
		t.Errorf("WithDetails() len = %d, want 3", len(err.Details))
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrNotFound, "error 1")
	err2 := errors.New(errors.ErrNotFound, "error 2")
	err3 := errors.New(errors.ErrInternal, "error 3")

	t.Run("same_code_is_equal", func(t *testing.T) {
		if !err1.Is(err2) {
			t.Error("Is() should return true for same code")
		}
	})

	t.Run("different_code_not_equal", func(t *testing.T) {
		if err1.Is(err3) {
			t.Error("Is() should return false for different codes")
		}
	})

	t.Run("works_with_errors_Is", func(t *testing.T) {
		if !stderrors.Is(err1, err2) {
			t.Error("errors.Is() should work with DeliveryError")
		}
	})
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrAlreadyExists, "exists"),
			code:     errors.ErrAlreadyExists,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      errors.Wrap(stderrors.New("base"), errors.ErrSharedResourceMissing, "missing"),
			code:     errors.ErrSharedResourceMissing,
			expected: true,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected errors.ErrorCode
	}{
		{
			name:     "delivery_error",
			err:      errors.New(errors.ErrNameCollision, "collision"),
			expected: errors.ErrNameCollision,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			expected: errors.ErrUnknown,
		},
		{
			name:     "nil_error",
			err:      nil,
			expected: errors.ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	remoteErr := errors.Wrap(rootCause, errors.ErrRemoteOperation, "cannot read link")
	releaseErr := errors.Wrap(remoteErr, errors.ErrInternal, "failed to resolve current release")

	t.Run("top_level_has_correct_code", func(t *testing.T) {
		if !errors.IsErrorCode(releaseErr, errors.ErrInternal) {
			t.Error("Top level should have ErrInternal code")
		}
	})

	t.Run("can_find_middle_error", func(t *testing.T) {
		var coded *errors.DeliveryError
		if stderrors.As(releaseErr.Unwrap(), &coded) {
			if !errors.IsErrorCode(coded, errors.ErrRemoteOperation) {
				t.Error("Middle error should have ErrRemoteOperation code")
			}
		}
	})

	t.Run("can_find_root_cause", func(t *testing.T) {
		if !stderrors.Is(releaseErr, rootCause) {
			t.Error("Should find root cause with errors.Is")
		}
	})
}
