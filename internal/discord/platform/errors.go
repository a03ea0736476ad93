package platform

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/disgoorg/disgo/rest"
	"github.com/robalyx/fuzzy/internal/discord/notice"
)

// Discord JSON error codes the adapter distinguishes.
const (
	codeUnknownChannel     = 10003
	codeUnknownGuild       = 10004
	codeUnknownMessage     = 10008
	codeUnknownRole        = 10011
	codeMissingAccess      = 50001
	codeMissingPermissions = 50013
)

// classify maps REST failures onto notice errors. A bare 404 becomes notFound,
// which depends on what the request was looking up. Anything unrecognised is
// returned unchanged.
func classify(err error, notFound error) error {
	if err == nil {
		return nil
	}

	var restErr *rest.Error
	if !errors.As(err, &restErr) {
		return err
	}

	switch int(restErr.Code) {
	case codeUnknownMessage:
		return fmt.Errorf("%w: %w", notice.ErrUnknownMessage, err)
	case codeUnknownChannel, codeUnknownGuild, codeUnknownRole:
		return fmt.Errorf("%w: %w", notice.ErrUnknownTarget, err)
	case codeMissingAccess, codeMissingPermissions:
		return fmt.Errorf("%w: %w", notice.ErrMissingAccess, err)
	}

	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", notFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", notice.ErrMissingAccess, err)
		}
	}

	return err
}

// classifyMessage is classify for requests that address a single message.
// A message cannot outlive its channel, so an unknown channel is an unknown message.
func classifyMessage(err error) error {
	var restErr *rest.Error
	if errors.As(err, &restErr) && int(restErr.Code) == codeUnknownChannel {
		return fmt.Errorf("%w: %w", notice.ErrUnknownMessage, err)
	}
	return classify(err, notice.ErrUnknownMessage)
}
