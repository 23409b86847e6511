package v1

import (
	"context"
	"errors"

	"vkinder/apps/bot/internal/dto"
	"vkinder/apps/bot/internal/middleware"
	"vkinder/apps/bot/internal/oauth"
	"vkinder/consts"
	"vkinder/pkg/logger"
	"vkinder/pkg/result"

	"github.com/gin-gonic/gin"
)

// CallbackCompleter exchanges the code of a redirect identified by its state.
type CallbackCompleter interface {
	CompleteByState(ctx context.Context, params oauth.Params) (*oauth.Result, error)
}

// AuthorizationFinisher stores the token and greets the user in the chat.
type AuthorizationFinisher interface {
	FinishAuthorization(ctx context.Context, res *oauth.Result) error
}

// OAuthHandler serves the VK ID redirect.
type OAuthHandler struct {
	flow     CallbackCompleter
	finisher AuthorizationFinisher
}

// NewOAuthHandler builds the handler.
func NewOAuthHandler(flow CallbackCompleter, finisher AuthorizationFinisher) *OAuthHandler {
	return &OAuthHandler{flow: flow, finisher: finisher}
}

// Callback completes an authorization started in the chat.
// @Router /oauth/callback [get]
func (h *OAuthHandler) Callback(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	// 1. the user may have declined on the VK page
	if denied := c.Query("error"); denied != "" {
		logger.Info(ctx, "authorization declined",
			logger.String("error", denied),
			logger.String("description", c.Query("error_description")),
		)
		result.Fail(c, nil, consts.CodeAuthDenied)
		return
	}

	// 2. bind the query
	var req dto.CallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		// malformed redirects are client input, not logged
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	// 3. exchange the code
	res, err := h.flow.CompleteByState(ctx, oauth.Params{Code: req.Code, State: req.State, DeviceID: req.DeviceID})
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrChallengeNotFound):
			result.Fail(c, nil, consts.CodeAuthStateExpired)
		case errors.Is(err, oauth.ErrExchangeRejected):
			logger.Warn(ctx, "code exchange rejected", logger.ErrorField("error", err))
			result.Fail(c, nil, consts.CodeAuthExchangeFailed)
		default:
			logger.Error(ctx, "code exchange failed", logger.ErrorField("error", err))
			result.Fail(c, nil, consts.CodeServiceUnavailable)
		}
		return
	}

	// 4. store the token and move the chat to the main menu
	if err := h.finisher.FinishAuthorization(ctx, res); err != nil {
		logger.Error(ctx, "authorization not stored",
			logger.Int64("user_id", res.OwnerID),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.SuccessWithMessage(c, dto.CallbackResponse{UserID: res.OwnerID}, "authorized, return to the bot chat")
}
