package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viert/uidstore/errdefs"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(errors.Wrap(errdefs.ErrNotFound, "entry")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.Wrap(errdefs.ErrInvalidArgument, "offset")))
	assert.Equal(t, http.StatusInsufficientStorage, StatusFor(errors.Wrap(errdefs.ErrOutOfMemory, "region")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.Wrap(errdefs.ErrIO, "erase")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(fmt.Errorf("anything else")))
}

func TestWriteJSONError(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code int
	}{
		{NewHTTPError(http.StatusBadRequest, "bad %s", "input"), http.StatusBadRequest},
		{errors.Wrap(errdefs.ErrNotFound, "entry \"x\""), http.StatusNotFound},
		{errors.Wrap(errdefs.ErrIO, "program failed"), http.StatusInternalServerError},
	} {
		w := httptest.NewRecorder()
		require.NoError(t, WriteJSONError(w, tc.err))
		assert.Equal(t, tc.code, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp httpErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.err.Error(), resp.Error)
	}
}
