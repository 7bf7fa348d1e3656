package ports

import (
	"log/slog"
	"net/http"

	"github.com/puttlog/puttlog/internal/app"
	"github.com/puttlog/puttlog/internal/logging"
	"github.com/puttlog/puttlog/internal/reporting"
	"github.com/puttlog/puttlog/internal/strutils"
)

type addFriendRequest struct {
	FriendID string `json:"friendId" validate:"required"`
}

type completeChallengeRequest struct {
	ChallengeID string `json:"challengeId" validate:"required,max=128"`
}

func MakeAddFriendHandler(
	addFriend app.AddFriend,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"add_friend",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(4, 240),
		newPlayerIDRateLimiter(1, 60),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromPath(w, r)
		if !ok {
			return
		}

		var request addFriendRequest
		if err := decodeRequestBody(w, r, &request); err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Invalid request body", "error", err)
			writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
			return
		}

		friendID, err := strutils.NormalizeID(request.FriendID)
		if err != nil {
			writeErrorResponse(w, "invalid friend id", http.StatusBadRequest)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("friendId", friendID))
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{"friendId": friendID})

		result, err := addFriend(ctx, playerID, friendID)
		if err != nil {
			writeAppErrorResponse(w, err)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, achievementsResultToResponse(result))
	}

	return middleware(handler)
}

func MakeCompleteChallengeHandler(
	completeChallenge app.CompleteChallenge,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"complete_challenge",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(4, 240),
		newPlayerIDRateLimiter(1, 60),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromPath(w, r)
		if !ok {
			return
		}

		var request completeChallengeRequest
		if err := decodeRequestBody(w, r, &request); err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Invalid request body", "error", err)
			writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
			return
		}

		ctx = reporting.AddExtrasToContext(ctx, map[string]string{"challengeId": request.ChallengeID})

		result, err := completeChallenge(ctx, playerID, request.ChallengeID)
		if err != nil {
			writeAppErrorResponse(w, err)
			return
		}

		writeJSONResponse(ctx, w, http.StatusOK, achievementsResultToResponse(result))
	}

	return middleware(handler)
}
