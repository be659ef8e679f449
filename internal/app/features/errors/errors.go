// internal/app/features/errors/errors.go
//
// Package errors maps store errors to the API's HTTP status and wire
// codes. Handlers funnel every error they did not handle themselves
// through Write, so the mapping lives in one place.
package errors

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	chatstore "github.com/dalemusser/gatherhub/internal/app/store/chats"
	groupstore "github.com/dalemusser/gatherhub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/gatherhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/gatherhub/internal/app/store/users"
	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
	"github.com/dalemusser/gatherhub/internal/app/system/inputval"
)

// Status resolves an error to its HTTP status and wire code. Unknown
// errors resolve to 500 serverError.
func Status(err error) (int, string) {
	// Validation failures carry their own field code.
	var fe *inputval.FieldError
	if errors.As(err, &fe) {
		return http.StatusBadRequest, fe.Code
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound, "notFound"

	case errors.Is(err, userstore.ErrDuplicateAccount):
		return http.StatusConflict, "userAccountDuplicate"
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return http.StatusConflict, "userEmailDuplicate"
	case errors.Is(err, userstore.ErrInvalidCredentials):
		return http.StatusBadRequest, "loginFailed"

	case errors.Is(err, membershipstore.ErrAlreadyOrganized):
		return http.StatusBadRequest, "alreadyOrganized"
	case errors.Is(err, membershipstore.ErrAlreadyJoined):
		return http.StatusBadRequest, "alreadyJoined"
	case errors.Is(err, membershipstore.ErrGroupFull):
		return http.StatusBadRequest, "groupFull"
	case errors.Is(err, membershipstore.ErrNotMember):
		return http.StatusBadRequest, "notMember"
	case errors.Is(err, membershipstore.ErrNotOrganizer):
		return http.StatusForbidden, "notOrganizer"
	case errors.Is(err, membershipstore.ErrAlreadyFavorite):
		return http.StatusBadRequest, "alreadyFavorite"
	case errors.Is(err, membershipstore.ErrNotFavorite):
		return http.StatusBadRequest, "notFavorite"

	case errors.Is(err, groupstore.ErrNotOrganizer):
		return http.StatusForbidden, "notOrganizer"
	case errors.Is(err, groupstore.ErrCommentNotFound):
		return http.StatusNotFound, "notFound"
	case errors.Is(err, groupstore.ErrNotCommentAuthor):
		return http.StatusForbidden, "userPermissionDenied"
	case errors.Is(err, groupstore.ErrReplyNotFound):
		return http.StatusNotFound, "notFoundReply"
	case errors.Is(err, groupstore.ErrLimitBelowCount):
		return http.StatusBadRequest, "memberLimitBelowCount"

	case errors.Is(err, chatstore.ErrChatExists):
		return http.StatusConflict, "chatAlreadyExists"
	case errors.Is(err, chatstore.ErrGroupNotFound):
		return http.StatusNotFound, "groupNotFound"
	case errors.Is(err, chatstore.ErrNotMember):
		return http.StatusForbidden, "userNotInGroup"
	}

	return http.StatusInternalServerError, "serverError"
}

// Write resolves err and writes the failure envelope. Server errors are
// logged with the request path; expected errors are not.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, code := Status(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err))
	}
	httpjson.Fail(w, status, code)
}
