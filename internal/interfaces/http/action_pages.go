package http

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/approval"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// The magic-link pages are deliberately plain: a short status message for
// the approve path and a one-field reason form for the reject path. No
// internal error detail ever reaches this unauthenticated surface.

// ActionLink handles GET /approval/action/:token.
// Approve tokens redeem immediately; reject tokens render the reason form
// first, so a bare click never finalizes a rejection.
func (h *Handlers) ActionLink(c *gin.Context) {
	tokenValue := c.Param("token")

	tok, err := h.tokenGateway.Inspect(c.Request.Context(), tokenValue)
	if err != nil {
		h.renderActionError(c, err)
		return
	}

	if tok.ActionType == entity.DecisionReject {
		h.renderPage(c, http.StatusOK, "Reject request",
			rejectFormBody(tokenValue))
		return
	}

	res, err := h.tokenGateway.Redeem(c.Request.Context(), tokenValue, "")
	h.renderRedeemResult(c, res != nil, err)
}

// ActionLinkSubmit handles POST /approval/action/:token with the rejection
// reason form
func (h *Handlers) ActionLinkSubmit(c *gin.Context) {
	tokenValue := c.Param("token")
	reason := c.PostForm("reason")

	res, err := h.tokenGateway.Redeem(c.Request.Context(), tokenValue, reason)
	if errors.Is(err, approval.ErrReasonRequired) {
		h.renderPage(c, http.StatusOK, "Reject request",
			`<p>A reason is required to reject this request.</p>`+rejectFormBody(tokenValue))
		return
	}
	h.renderRedeemResult(c, res != nil, err)
}

func (h *Handlers) renderRedeemResult(c *gin.Context, recorded bool, err error) {
	if err == nil {
		h.renderPage(c, http.StatusOK, "Done",
			`<p>Your decision has been recorded. You can close this page.</p>`)
		return
	}

	var sideEffect *approval.SideEffectError
	if errors.As(err, &sideEffect) && recorded {
		// Decision committed; the follow-up failure is an operator
		// concern, not the approver's.
		h.logger.Error("Side effect failed on link redemption", "error", err)
		h.renderPage(c, http.StatusOK, "Done",
			`<p>Your decision has been recorded. You can close this page.</p>`)
		return
	}

	h.renderActionError(c, err)
}

func (h *Handlers) renderActionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, approval.ErrAlreadyProcessed), errors.Is(err, approval.ErrTokenUsed):
		h.renderPage(c, http.StatusOK, "Already handled",
			`<p>This request has already been handled. No further action is needed.</p>`)
	case errors.Is(err, approval.ErrTokenExpired):
		h.renderPage(c, http.StatusGone, "Link expired",
			`<p>This link has expired. Please open the request in the app to act on it.</p>`)
	case errors.Is(err, approval.ErrInvalidToken):
		h.renderPage(c, http.StatusNotFound, "Invalid link",
			`<p>This link is invalid.</p>`)
	default:
		h.logger.Error("Action link failed", "error", err)
		h.renderPage(c, http.StatusInternalServerError, "Something went wrong",
			`<p>Something went wrong. Please open the request in the app to act on it.</p>`)
	}
}

func (h *Handlers) renderPage(c *gin.Context, status int, title, body string) {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<h1>%s</h1>
%s
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), body)
	c.Data(status, "text/html; charset=utf-8", []byte(page))
}

func rejectFormBody(tokenValue string) string {
	return fmt.Sprintf(`<form method="POST" action="/approval/action/%s">
<label for="reason">Please provide a reason for rejecting this request:</label><br>
<textarea id="reason" name="reason" rows="4" cols="50" required></textarea><br>
<button type="submit">Reject request</button>
</form>`, html.EscapeString(tokenValue))
}
