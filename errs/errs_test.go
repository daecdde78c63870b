package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("no such order")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("qty must be at least 1")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(InvalidState("session already checked out")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("qr code already in use")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Gateway(errors.New("timeout"), "create charge")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("disk on fire")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("while checking out: %w", InvalidState("session already checked out"))
	assert.Equal(t, KindInvalidState, KindOf(err))
	assert.False(t, IsNotFound(err))

	wrapped := fmt.Errorf("handler: %w", NotFound("order %s not found", "abc"))
	assert.True(t, IsNotFound(wrapped))
}

func TestGatewayKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Gateway(cause, "create promptpay source")
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "create promptpay source")
}
