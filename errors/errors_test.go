package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeArchive, "cannot open archive")

	require.Equal(t, CodeArchive, err.Code())
	require.Equal(t, ClassificationPermanent, err.Classification())
	require.Equal(t, "cannot open archive", err.Message())
	require.Nil(t, err.Context())
	require.Nil(t, err.Unwrap())
	require.Equal(t, "[ARCHIVE_ERROR] cannot open archive", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeNameConflict, "no free name after %d attempts", 3)
	require.Equal(t, "[NAME_CONFLICT] no free name after 3 attempts", err.Error())
}

func TestDefaultClassification(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorClassification
	}{
		{CodeNetwork, ClassificationRetryable},
		{CodeTimeout, ClassificationRetryable},
		{CodeBackend, ClassificationPermanent},
		{CodeIO, ClassificationPermanent},
		{CodeCancelled, ClassificationPermanent},
		{ErrorCode("SOMETHING_NEW"), ClassificationPermanent},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			require.Equal(t, tt.want, New(tt.code, "x").Classification())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.Nil(t, Wrap(nil, CodeBackend, "x"))
		require.Nil(t, Wrapf(nil, CodeBackend, "x %d", 1))
		require.Nil(t, WrapWithContext(nil, CodeBackend, "x", nil))
	})

	t.Run("keeps io/fs sentinels reachable", func(t *testing.T) {
		err := Wrapf(fs.ErrNotExist, CodeBackend, "failed to delete %s", "sdmc:/a")
		require.True(t, stderrors.Is(err, fs.ErrNotExist))
		require.Equal(t, CodeBackend, GetCode(err))
		require.Equal(t, "[BACKEND_ERROR] failed to delete sdmc:/a: file does not exist", err.Error())
	})

	t.Run("preserves inner classification", func(t *testing.T) {
		inner := New(CodeNetwork, "connection reset")
		err := Wrap(inner, CodeIO, "write failed")
		require.Equal(t, CodeIO, err.Code())
		require.True(t, err.Classification().IsRetryable())
	})

	t.Run("context is copied", func(t *testing.T) {
		ctx := map[string]interface{}{"path": "a"}
		err := WrapWithContext(stderrors.New("boom"), CodeIO, "read failed", ctx)
		ctx["path"] = "b"
		require.Equal(t, "a", err.Context()["path"])
	})
}

func TestWithContext(t *testing.T) {
	err := WithContext(New(CodeBackend, "rename failed"), "src", "a")
	err = WithContext(err, "dst", "b")

	require.Equal(t, CodeBackend, err.Code())
	require.Equal(t, map[string]interface{}{"src": "a", "dst": "b"}, err.Context())

	t.Run("plain error becomes unknown", func(t *testing.T) {
		plain := stderrors.New("plain")
		err := WithContext(plain, "k", 1)
		require.Equal(t, CodeUnknown, err.Code())
		require.True(t, stderrors.Is(err, plain))
	})

	t.Run("map overrides", func(t *testing.T) {
		err := WithContextMap(New(CodeIO, "x"), map[string]interface{}{"a": 1})
		err = WithContextMap(err, map[string]interface{}{"a": 2, "b": 3})
		require.Equal(t, map[string]interface{}{"a": 2, "b": 3}, err.Context())
	})

	t.Run("returned context is a copy", func(t *testing.T) {
		err := WithContext(New(CodeIO, "x"), "a", 1)
		err.Context()["a"] = 99
		require.Equal(t, 1, err.Context()["a"])
	})
}

func TestWithClassification(t *testing.T) {
	err := WithClassification(New(CodeBackend, "share offline"), ClassificationRetryable)
	require.True(t, IsRetryable(err))
	require.Equal(t, CodeBackend, err.Code())
	require.Nil(t, WithClassification(nil, ClassificationRetryable))
}

func TestGetCode(t *testing.T) {
	require.Equal(t, CodeUnknown, GetCode(nil))
	require.Equal(t, CodeUnknown, GetCode(stderrors.New("x")))
	require.Equal(t, CodeIO, GetCode(fmt.Errorf("outer: %w", New(CodeIO, "x"))))
	require.Equal(t, CodeBackend, GetCode(Wrap(New(CodeIO, "x"), CodeBackend, "y")))
}

func TestHasCode(t *testing.T) {
	err := Wrap(New(CodeCancelled, "cancelled"), CodeBackend, "paste stopped")

	assert.True(t, HasCode(err, CodeBackend))
	assert.True(t, HasCode(err, CodeCancelled))
	assert.False(t, HasCode(err, CodeIO))
	assert.True(t, IsCancelled(err))
	assert.False(t, IsCancelled(nil))
	assert.False(t, IsCancelled(stderrors.New("x")))
}

func TestAsAndIs(t *testing.T) {
	sentinel := New(CodeNotFound, "missing")
	wrapped := Wrap(sentinel, CodeBackend, "open failed")

	require.True(t, Is(wrapped, sentinel))

	var te TransferError
	require.True(t, As(wrapped, &te))
	require.Equal(t, CodeBackend, te.Code())
}

func TestGetClassification(t *testing.T) {
	require.Equal(t, ClassificationPermanent, GetClassification(nil))
	require.Equal(t, ClassificationPermanent, GetClassification(stderrors.New("x")))
	require.Equal(t, ClassificationRetryable, GetClassification(New(CodeTimeout, "slow")))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestWrap_TimeoutsAreRetryable(t *testing.T) {
	err := Wrap(fmt.Errorf("put: %w", timeoutErr{}), CodeBackend, "upload failed")
	assert.True(t, IsRetryable(err))

	err = Wrap(context.DeadlineExceeded, CodeIO, "read failed")
	assert.True(t, IsRetryable(err))

	err = Wrap(fs.ErrNotExist, CodeBackend, "open failed")
	assert.False(t, IsRetryable(err))
}
