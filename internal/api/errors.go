package api

import (
	"errors"

	"pet-matchmaker/internal/catalog"
	apperrors "pet-matchmaker/internal/common/errors"
	"pet-matchmaker/internal/matchmaking/conversation"
	"pet-matchmaker/internal/matchmaking/matcher"
	"pet-matchmaker/internal/matchmaking/session"
	"pet-matchmaker/internal/store"
)

// toStandardError maps domain sentinel errors to API errors.
func toStandardError(err error) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	switch {
	case errors.As(err, &stdErr):
		return stdErr
	case errors.Is(err, conversation.ErrChatUnavailable):
		return apperrors.NewChatUnavailableError(err)
	case errors.Is(err, matcher.ErrMalformedMatchResponse):
		return apperrors.NewMalformedMatchResponseError(err)
	case errors.Is(err, matcher.ErrMatchingUnavailable):
		return apperrors.NewMatchingUnavailableError(err)
	case errors.Is(err, conversation.ErrInvalidMessage):
		return apperrors.NewInvalidRequestError(err.Error())
	case errors.Is(err, session.ErrSessionStoreFailed):
		return apperrors.NewSessionStoreFailedError(err)
	case errors.Is(err, catalog.ErrSearchQueryFailed):
		return apperrors.NewSearchQueryFailedError("pets", err)
	case errors.Is(err, catalog.ErrQueryExecutionFailed), errors.Is(err, catalog.ErrCatalogTimeout):
		return apperrors.NewQueryExecutionFailedError("get_available_pets", err)
	case errors.Is(err, store.ErrDatabaseInsertFailed):
		return apperrors.NewDatabaseInsertFailedError("save_matchmaking_result", err)
	default:
		return apperrors.NewInternalError(err)
	}
}
