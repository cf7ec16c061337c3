package internal

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/entry"
	"golf-tracker/internal/golf"
)

// Log writes an audit entry. Failures are logged and otherwise ignored.
func (s *PG) Log(ctx context.Context, actorID, action, details string) {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	_, err := qExec(ctx, s.db, psql.Insert("logs").
		Columns("actor_id", "action", "details").
		Values(actor, action, details))
	if err != nil {
		log.Printf("[audit] %s by %s: %v", action, actorID, err)
	}
}

const ctxProduction = "production"

// fail writes err as a JSON error payload.
func fail(c *gin.Context, err error) {
	status, body := errorBody(c, err)
	c.AbortWithStatusJSON(status, body)
}

// errorBody logs err and builds its payload. In production server errors are
// tagged for the external error reporter.
func errorBody(c *gin.Context, err error) (int, gin.H) {
	e := apperr.From(err)
	status := apperr.HTTPStatus(err)

	tag := "[api]"
	if status >= 500 && c.GetBool(ctxProduction) {
		tag = "[api][report]"
	}
	log.Printf("%s %s %s -> %d %s: %v", tag, c.Request.Method, c.FullPath(), status, e.Kind, err)

	body := gin.H{"error": e.Message, "code": e.Code}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	if apperr.Retryable(err) {
		body["retryable"] = true
	}
	return status, body
}

// entryError maps workflow failures onto the error taxonomy.
func entryError(err error) error {
	switch {
	case errors.Is(err, entry.ErrSessionNotFound):
		return apperr.Wrap(apperr.ErrNotFound, err)
	case errors.Is(err, entry.ErrBusy),
		errors.Is(err, entry.ErrSubmitted),
		errors.Is(err, entry.ErrWrongStep),
		errors.Is(err, entry.ErrFirstStep),
		errors.Is(err, entry.ErrLastStep),
		errors.Is(err, entry.ErrNotConfirming):
		return &apperr.Error{Kind: apperr.KindConflict, Code: "failed-precondition", Message: trimPkg(err), Err: err}
	case errors.Is(err, entry.ErrTooManyParticipants),
		errors.Is(err, entry.ErrLastParticipant),
		errors.Is(err, entry.ErrParticipantIndex),
		errors.Is(err, entry.ErrHoleNumber):
		return &apperr.Error{Kind: apperr.KindValidation, Code: "invalid-argument", Message: trimPkg(err), Err: err}
	}
	return err
}

func trimPkg(err error) string {
	return strings.TrimPrefix(err.Error(), "entry: ")
}

func uid(c *gin.Context) string {
	return c.GetString("uid")
}

func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	return n, err == nil
}

// today is the local calendar date in play-date form.
func today(now time.Time) string {
	return now.Local().Format(golf.DateLayout)
}
