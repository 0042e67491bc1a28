package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/luigilocane-sketch/ricorsi-sinafi/app"
	"github.com/luigilocane-sketch/ricorsi-sinafi/form"
	"github.com/luigilocane-sketch/ricorsi-sinafi/httpx"
	"github.com/luigilocane-sketch/ricorsi-sinafi/log"
	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
	"github.com/luigilocane-sketch/ricorsi-sinafi/routes/middlewares"
)

const inviteInvalidMsg = "Invito non valido o scaduto"

type inviteRequest struct {
	Nome    string `json:"nome"`
	Cognome string `json:"cognome"`
	Email   string `json:"email"`
}

// CreateInvite issues a single-use registration link for a new admin. The
// link is shown to the inviting admin, who delivers it by hand; nothing is
// mailed.
func CreateInvite(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := inviteRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		req.Nome = strings.TrimSpace(req.Nome)
		req.Cognome = strings.TrimSpace(req.Cognome)
		req.Email = strings.TrimSpace(req.Email)
		if req.Nome == "" || req.Cognome == "" || !form.ValidEmail(req.Email) {
			httpx.Message(w, r, http.StatusBadRequest, "create_invite.check", "Nome, cognome ed email validi sono obbligatori")
			return
		}

		invite := model.Invite{
			Token:     uuid.NewString(),
			Nome:      req.Nome,
			Cognome:   req.Cognome,
			Email:     req.Email,
			CreatedBy: middlewares.Username(r),
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(app.InviteTTL),
		}
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO invite (token, nome, cognome, email, created_by, created_at, expires_at, used)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
			invite.Token, invite.Nome, invite.Cognome, invite.Email,
			invite.CreatedBy, invite.CreatedAt, invite.ExpiresAt,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_invite", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"token":     invite.Token,
			"inviteUrl": "/admin/register/" + invite.Token,
			"expiresAt": invite.ExpiresAt,
		})
	}
}

func ListInvites(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT token, nome, cognome, email, created_by, created_at, expires_at, used
			FROM invite
			ORDER BY created_at DESC`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_invites", err)
			return
		}
		defer rows.Close()

		invites := []model.Invite{}
		for rows.Next() {
			i := model.Invite{}
			err = rows.Scan(&i.Token, &i.Nome, &i.Cognome, &i.Email, &i.CreatedBy, &i.CreatedAt, &i.ExpiresAt, &i.Used)
			if err != nil {
				httpx.LogInternalError(w, "db.get_invites.scan", err)
				return
			}
			invites = append(invites, i)
		}

		render.JSON(w, r, map[string]any{
			"invites": invites,
		})
	}
}

func ListAdmins(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT id, username, nome, cognome, email, created_by, created_at
			FROM admin
			ORDER BY created_at`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_admins", err)
			return
		}
		defer rows.Close()

		admins := []model.Admin{}
		for rows.Next() {
			a := model.Admin{}
			err = rows.Scan(&a.ID, &a.Username, &a.Nome, &a.Cognome, &a.Email, &a.CreatedBy, &a.CreatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_admins.scan", err)
				return
			}
			admins = append(admins, a)
		}

		render.JSON(w, r, map[string]any{
			"admins": admins,
		})
	}
}

// ValidateInvite lets the registration page confirm a token before showing
// the form. Expired, consumed and unknown tokens are one and the same
// failure to the outside.
func ValidateInvite(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		invite, err := fetchInvite(r, app, token)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.Message(w, r, http.StatusNotFound, "validate_invite", inviteInvalidMsg)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_invite", err)
			return
		}
		if !invite.Consumable(time.Now()) {
			httpx.Message(w, r, http.StatusNotFound, "validate_invite.consumable", inviteInvalidMsg)
			return
		}

		render.JSON(w, r, map[string]any{
			"nome":      invite.Nome,
			"cognome":   invite.Cognome,
			"email":     invite.Email,
			"expiresAt": invite.ExpiresAt,
		})
	}
}

type registerRequest struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterWithInvite consumes the invite and creates the admin account in
// one transaction. Any failure leaves no partial registration behind.
func RegisterWithInvite(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := registerRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" || len(req.Password) < 8 {
			httpx.Message(w, r, http.StatusBadRequest, "register.check", "Username e password (almeno 8 caratteri) sono obbligatori")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		invite, err := fetchInviteTx(r, tx, req.Token)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.Message(w, r, http.StatusNotFound, "register.invite", inviteInvalidMsg)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.register.invite", err)
			return
		}
		if !invite.Consumable(time.Now()) {
			httpx.Message(w, r, http.StatusNotFound, "register.consumable", inviteInvalidMsg)
			return
		}

		var taken bool
		err = tx.QueryRowContext(r.Context(), `
			SELECT EXISTS (SELECT 1 FROM admin WHERE username = ?)`, req.Username).Scan(&taken)
		if err != nil {
			httpx.LogInternalError(w, "db.register.username", err)
			return
		}
		if taken {
			httpx.Message(w, r, http.StatusConflict, "register.username", "Username già in uso")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "register.hash", err)
			return
		}

		// used=0 guard makes consumption single-use even under a race
		res, err := tx.ExecContext(r.Context(), `
			UPDATE invite SET used = 1 WHERE token = ? AND used = 0`, req.Token)
		if err != nil {
			httpx.LogInternalError(w, "db.register.consume", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.register.consume.verify", err)
			return
		}
		if n < 1 {
			httpx.Message(w, r, http.StatusNotFound, "register.consume", inviteInvalidMsg)
			return
		}

		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO admin (id, username, password_hash, nome, cognome, email, created_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), req.Username, string(hash),
			invite.Nome, invite.Cognome, invite.Email, invite.CreatedBy, time.Now(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.register.insert", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.register.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message": "Registrazione completata",
		})
	}
}

func fetchInvite(r *http.Request, app app.App, token string) (model.Invite, error) {
	return scanInvite(app.QueryRowContext(r.Context(), inviteQuery, token))
}

func fetchInviteTx(r *http.Request, tx *sql.Tx, token string) (model.Invite, error) {
	return scanInvite(tx.QueryRowContext(r.Context(), inviteQuery, token))
}

const inviteQuery = `
	SELECT token, nome, cognome, email, created_by, created_at, expires_at, used
	FROM invite
	WHERE token = ?`

func scanInvite(row *sql.Row) (model.Invite, error) {
	i := model.Invite{}
	err := row.Scan(&i.Token, &i.Nome, &i.Cognome, &i.Email, &i.CreatedBy, &i.CreatedAt, &i.ExpiresAt, &i.Used)
	return i, err
}
