package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
	"papertrade/internal/middleware"
	"papertrade/internal/service"
)

// APIHandler serves the JSON API mirroring the web surface
type APIHandler struct {
	creds    *service.CredentialService
	ledger   *service.LedgerService
	sessions *service.SessionService
	quotes   domain.QuoteService
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(
	creds *service.CredentialService,
	ledger *service.LedgerService,
	sessions *service.SessionService,
	quotes domain.QuoteService,
) *APIHandler {
	return &APIHandler{
		creds:    creds,
		ledger:   ledger,
		sessions: sessions,
		quotes:   quotes,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *APIHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}

	user, err := h.creds.Register(c.Request().Context(), req.Username, req.Password, req.Confirmation)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	token, err := h.sessions.Create(c.Request().Context(), user.ID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to create session", err)
	}
	setSessionCookie(c, token, h.sessions.TTL())

	return CreatedResponse(c, dto.LoginResponse{
		Token: token.String(),
		User:  dto.NewUserOutput(user),
	})
}

// Login handles user login
// POST /api/auth/login
func (h *APIHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}

	user, err := h.creds.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	token, err := h.sessions.Create(c.Request().Context(), user.ID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to create session", err)
	}
	setSessionCookie(c, token, h.sessions.TTL())

	return SuccessResponse(c, dto.LoginResponse{
		Token: token.String(),
		User:  dto.NewUserOutput(user),
	})
}

// Logout destroys the current session
// POST /api/auth/logout
func (h *APIHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if token, err := uuid.Parse(cookie.Value); err == nil {
			if err := h.sessions.Destroy(c.Request().Context(), token); err != nil {
				return InternalServerErrorResponse(c, "Failed to destroy session", err)
			}
		}
	}

	clearSessionCookie(c)
	return SuccessResponse(c, map[string]string{"message": "Logged out"})
}

// Quote looks up a quote
// GET /api/quote?symbol=SYM
func (h *APIHandler) Quote(c echo.Context) error {
	quote, err := h.quotes.Lookup(c.Request().Context(), c.QueryParam("symbol"))
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, dto.NewQuoteOutput(quote))
}

// Buy executes a buy
// POST /api/buy
func (h *APIHandler) Buy(c echo.Context) error {
	return h.trade(c, h.ledger.Buy)
}

// Sell executes a sell
// POST /api/sell
func (h *APIHandler) Sell(c echo.Context) error {
	return h.trade(c, h.ledger.Sell)
}

func (h *APIHandler) trade(c echo.Context, execute func(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Trade, error)) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Authentication required")
	}

	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, err.Error())
	}

	trade, err := execute(c.Request().Context(), userID, req.Symbol, req.Shares)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, dto.NewTradeOutput(trade))
}

// Portfolio returns the priced portfolio view
// GET /api/portfolio
func (h *APIHandler) Portfolio(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Authentication required")
	}

	portfolio, err := h.ledger.Portfolio(c.Request().Context(), userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, dto.NewPortfolioOutput(portfolio))
}

// History returns the user's trades, newest first
// GET /api/history
func (h *APIHandler) History(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Authentication required")
	}

	trades, err := h.ledger.History(c.Request().Context(), userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	out := make([]*dto.TradeOutput, 0, len(trades))
	for _, trade := range trades {
		out = append(out, dto.NewTradeOutput(trade))
	}
	return SuccessResponse(c, out)
}
