package http

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"papertrade/internal/domain"
	"papertrade/internal/middleware"
	"papertrade/internal/service"
)

// WebHandler serves the HTML pages: portfolio, buy, sell, quote, history and
// the register/login/logout forms. Recoverable failures redirect back with
// an error message in the query string; successes redirect to the portfolio
// with a flash message.
type WebHandler struct {
	templates *template.Template
	creds     *service.CredentialService
	ledger    *service.LedgerService
	sessions  *service.SessionService
	quotes    domain.QuoteService
}

// NewWebHandler creates a new WebHandler
func NewWebHandler(
	templates *template.Template,
	creds *service.CredentialService,
	ledger *service.LedgerService,
	sessions *service.SessionService,
	quotes domain.QuoteService,
) *WebHandler {
	return &WebHandler{
		templates: templates,
		creds:     creds,
		ledger:    ledger,
		sessions:  sessions,
		quotes:    quotes,
	}
}

// HandleIndex renders the portfolio page
// GET /
func (h *WebHandler) HandleIndex(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	data := map[string]interface{}{"Portfolio": &domain.Portfolio{}}

	portfolio, err := h.ledger.Portfolio(c.Request().Context(), userID)
	if err != nil {
		msg, recoverable := userMessage(err)
		if !recoverable {
			return err
		}
		// Render the page with the error banner instead of a bare total
		// that silently omits a position.
		data["Error"] = msg
	} else {
		data["Portfolio"] = portfolio
	}

	return h.render(c, "index.html", "Portfolio", data)
}

// HandleBuy renders the buy form
// GET /buy
func (h *WebHandler) HandleBuy(c echo.Context) error {
	return h.render(c, "buy.html", "Buy", nil)
}

// HandleBuyPost executes a buy
// POST /buy
func (h *WebHandler) HandleBuyPost(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	shares, err := parseShares(c.FormValue("shares"))
	if err != nil {
		return redirectWithError(c, "/buy", "Shares must be a positive whole number")
	}

	if _, err := h.ledger.Buy(c.Request().Context(), userID, c.FormValue("symbol"), shares); err != nil {
		if msg, recoverable := userMessage(err); recoverable {
			return redirectWithError(c, "/buy", msg)
		}
		return err
	}

	return redirectWithFlash(c, "/", "Bought!")
}

// HandleSell renders the sell form with the user's held symbols
// GET /sell
func (h *WebHandler) HandleSell(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	symbols, err := h.ledger.HeldSymbols(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return h.render(c, "sell.html", "Sell", map[string]interface{}{"Symbols": symbols})
}

// HandleSellPost executes a sell
// POST /sell
func (h *WebHandler) HandleSellPost(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	shares, err := parseShares(c.FormValue("shares"))
	if err != nil {
		return redirectWithError(c, "/sell", "Shares must be a positive whole number")
	}

	if _, err := h.ledger.Sell(c.Request().Context(), userID, c.FormValue("symbol"), shares); err != nil {
		if msg, recoverable := userMessage(err); recoverable {
			return redirectWithError(c, "/sell", msg)
		}
		return err
	}

	return redirectWithFlash(c, "/", "Sold!")
}

// HandleQuote renders the quote form
// GET /quote
func (h *WebHandler) HandleQuote(c echo.Context) error {
	return h.render(c, "quote.html", "Quote", nil)
}

// HandleQuotePost looks up a quote and renders the result
// POST /quote
func (h *WebHandler) HandleQuotePost(c echo.Context) error {
	quote, err := h.quotes.Lookup(c.Request().Context(), c.FormValue("symbol"))
	if err != nil {
		if msg, recoverable := userMessage(err); recoverable {
			return redirectWithError(c, "/quote", msg)
		}
		return err
	}

	return h.render(c, "quoted.html", "Quote", map[string]interface{}{"Quote": quote})
}

// HandleHistory renders the transaction history
// GET /history
func (h *WebHandler) HandleHistory(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	trades, err := h.ledger.History(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return h.render(c, "history.html", "History", map[string]interface{}{"Trades": trades})
}

// HandleRegister renders the registration form
// GET /register
func (h *WebHandler) HandleRegister(c echo.Context) error {
	if h.authenticated(c) {
		return c.Redirect(http.StatusFound, "/")
	}
	return h.render(c, "register.html", "Register", nil)
}

// HandleRegisterPost registers a new user and logs them in
// POST /register
func (h *WebHandler) HandleRegisterPost(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.creds.Register(ctx,
		c.FormValue("username"),
		c.FormValue("password"),
		c.FormValue("confirmation"),
	)
	if err != nil {
		if msg, recoverable := userMessage(err); recoverable {
			return redirectWithError(c, "/register", msg)
		}
		return err
	}

	if err := h.openSession(c, user.ID); err != nil {
		return err
	}

	return redirectWithFlash(c, "/", "Registered!")
}

// HandleLogin renders the login form
// GET /login
func (h *WebHandler) HandleLogin(c echo.Context) error {
	if h.authenticated(c) {
		return c.Redirect(http.StatusFound, "/")
	}
	return h.render(c, "login.html", "Log In", nil)
}

// HandleLoginPost authenticates and opens a session
// POST /login
func (h *WebHandler) HandleLoginPost(c echo.Context) error {
	user, err := h.creds.Authenticate(c.Request().Context(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if msg, recoverable := userMessage(err); recoverable {
			return redirectWithError(c, "/login", msg)
		}
		return err
	}

	if err := h.openSession(c, user.ID); err != nil {
		return err
	}

	return redirectWithFlash(c, "/", "Logged in!")
}

// HandleLogout destroys the session
// GET /logout
func (h *WebHandler) HandleLogout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if token, err := uuid.Parse(cookie.Value); err == nil {
			if err := h.sessions.Destroy(c.Request().Context(), token); err != nil {
				return err
			}
		}
	}

	clearSessionCookie(c)
	return c.Redirect(http.StatusFound, "/login")
}

// authenticated reports whether the request carries a session cookie whose
// token still resolves. A cookie whose token is stale or garbage is cleared
// on the spot: redirecting its owner to "/" would only bounce them straight
// back to the login page.
func (h *WebHandler) authenticated(c echo.Context) bool {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	if token, err := uuid.Parse(cookie.Value); err == nil {
		if _, err := h.sessions.Resolve(c.Request().Context(), token); err == nil {
			return true
		}
	}

	clearSessionCookie(c)
	return false
}

func (h *WebHandler) openSession(c echo.Context, userID uuid.UUID) error {
	token, err := h.sessions.Create(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	setSessionCookie(c, token, h.sessions.TTL())
	return nil
}

func (h *WebHandler) render(c echo.Context, name, title string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Title"] = title
	data["LoggedIn"] = hasSessionCookie(c)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = c.QueryParam("flash")
	}
	if _, ok := data["Error"]; !ok {
		data["Error"] = c.QueryParam("error")
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return h.templates.ExecuteTemplate(c.Response().Writer, name, data)
}

func hasSessionCookie(c echo.Context) bool {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	return err == nil && cookie.Value != ""
}

func setSessionCookie(c echo.Context, token uuid.UUID, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func parseShares(raw string) (int64, error) {
	shares, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || shares <= 0 {
		return 0, domain.ErrValidation
	}
	return shares, nil
}

func redirectWithError(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusFound, path+"?error="+url.QueryEscape(msg))
}

func redirectWithFlash(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusFound, path+"?flash="+url.QueryEscape(msg))
}

// userMessage reports whether the error is a recoverable, user-visible
// failure and returns its display text.
func userMessage(err error) (string, bool) {
	// Quote outages carry transport details (peer addresses, dial errors)
	// that belong in the log, not in the query string.
	if errors.Is(err, domain.ErrQuoteUnavailable) {
		return "Quote service is unavailable, please try again", true
	}

	recoverable := []error{
		domain.ErrValidation,
		domain.ErrUnknownSymbol,
		domain.ErrInsufficientFunds,
		domain.ErrInsufficientShares,
		domain.ErrDuplicateUsername,
		domain.ErrWeakPassword,
		domain.ErrPasswordMismatch,
		domain.ErrInvalidCredentials,
	}
	for _, target := range recoverable {
		if errors.Is(err, target) {
			return err.Error(), true
		}
	}
	return "", false
}
