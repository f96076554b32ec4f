package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInternal:        http.StatusInternalServerError,
		KindValidation:      http.StatusBadRequest,
		KindBadRequest:      http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindRateLimited:     http.StatusTooManyRequests,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestInternal_KeepsTypedErrors(t *testing.T) {
	assert.Nil(t, Internal(nil))

	nf := NotFound(KeyTaskNotFound)
	wrapped := fmt.Errorf("loading: %w", nf)
	assert.Same(t, nf, Internal(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))

	cause := errors.New("connection refused")
	ie := Internal(cause)
	require.NotNil(t, ie)
	assert.Equal(t, KindInternal, ie.Kind)
	assert.ErrorIs(t, ie, cause)
	assert.NotContains(t, ie.Message(LocaleEN), "connection refused")
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))
	assert.Equal(t, KindInternal, From(errors.New("boom")).Kind)
	assert.Equal(t, KindConflict, From(Conflict(KeyEmailTaken)).Kind)
}

func TestText(t *testing.T) {
	assert.Equal(t, "Task not found", Text(KeyTaskNotFound, "en-US"))
	assert.Equal(t, "找不到任務", Text(KeyTaskNotFound, "zh-TW,zh;q=0.9"))
	assert.Equal(t, "Task not found", Text(KeyTaskNotFound, "fr"))
	assert.Equal(t, "no_such_key", Text("no_such_key", LocaleZH))
}

func TestCatalogIsComplete(t *testing.T) {
	for key := range catalog[LocaleEN] {
		_, ok := catalog[LocaleZH][key]
		assert.Truef(t, ok, "missing zh message for %q", key)
	}
	assert.Len(t, catalog[LocaleZH], len(catalog[LocaleEN]))
}
