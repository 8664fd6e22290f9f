package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gotodo/todokit/pkg/logger"
)

// Invalidator is what a dependent store needs from the session owner when
// one of its authorized calls is rejected. Manager implements it.
type Invalidator interface {
	Logout(ctx context.Context) error
}

// IsUnauthorized reports whether err means the session is no longer
// usable: an error in the chain exposing HTTPStatus() == 401, ErrUnauthorized,
// or ErrNotAuthenticated.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var st interface{ HTTPStatus() int }
	return errors.As(err, &st) && st.HTTPStatus() == http.StatusUnauthorized
}

// HandleFailure runs the failure contract of a dependent store. For an
// unauthorized err it signs out through inv, calls clear and returns true.
// Any other failure is only logged and the store keeps its data.
func HandleFailure(ctx context.Context, inv Invalidator, err error, clear func(), log *slog.Logger) bool {
	if err == nil {
		return false
	}
	log = logger.OrDiscard(log)

	if !IsUnauthorized(err) {
		log.WarnContext(ctx, "authorized call failed", logger.Error(err))
		return false
	}

	log.InfoContext(ctx, "authorization rejected, signing out", logger.Error(err))
	if inv != nil {
		if lerr := inv.Logout(ctx); lerr != nil {
			log.WarnContext(ctx, "sign out after rejection failed", logger.Error(lerr))
		}
	}
	if clear != nil {
		clear()
	}
	return true
}

var _ Invalidator = (*Manager)(nil)
