package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"github.com/luigilocane-sketch/ricorsi-sinafi/app"
	"github.com/luigilocane-sketch/ricorsi-sinafi/httpx"
	"github.com/luigilocane-sketch/ricorsi-sinafi/log"
	"github.com/luigilocane-sketch/ricorsi-sinafi/routes/middlewares"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login accepts JSON credentials and bridges them to the oauth bearer
// server, which owns token issuance.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := loginRequest{}
		err := render.DecodeJSON(r.Body, &creds)
		if err != nil || creds.Username == "" || creds.Password == "" {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.credentials")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {creds.Username},
			"password":   {creds.Password},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := regexp.MustCompile(`(?i)^refresh\s+(.*)`).FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

// Check confirms the caller's token is still good and says who they are.
func Check(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"username":      middlewares.Username(r),
			"authenticated": true,
		})
	}
}
