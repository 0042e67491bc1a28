package routes

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/luigilocane-sketch/ricorsi-sinafi/app"
	"github.com/luigilocane-sketch/ricorsi-sinafi/form"
	"github.com/luigilocane-sketch/ricorsi-sinafi/httpx"
	"github.com/luigilocane-sketch/ricorsi-sinafi/log"
	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
	"github.com/luigilocane-sketch/ricorsi-sinafi/stats"
)

func CreateCampaign(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaign := model.Campaign{}
		err := render.DecodeJSON(r.Body, &campaign)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := form.CheckSchema(campaign); err != nil {
			httpx.Message(w, r, http.StatusBadRequest, "create_campaign.check", err.Error())
			return
		}

		campaign.ID = uuid.NewString()
		if campaign.BadgeText == "" {
			campaign.BadgeText = "RICORSO COLLETTIVO"
		}
		for i := range campaign.Fields {
			if campaign.Fields[i].ID == "" {
				campaign.Fields[i].ID = uuid.NewString()
			}
		}
		for i := range campaign.Documents {
			if campaign.Documents[i].ID == "" {
				campaign.Documents[i].ID = uuid.NewString()
			}
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		now := time.Now()
		campaign.CreatedAt = now
		campaign.UpdatedAt = now
		regional, err := json.Marshal(campaign.RegionalDeadlines)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_campaign.deadlines", err)
			return
		}
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO campaign (id, title, description, badge_text, active, general_deadline, regional_deadlines, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			campaign.ID, campaign.Title, campaign.Description, campaign.BadgeText,
			campaign.Active, campaign.GeneralDeadline, string(regional), now, now,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_campaign", err)
			return
		}

		if err := insertCampaignSchema(r.Context(), tx, campaign); err != nil {
			httpx.LogInternalError(w, "db.insert_campaign.schema", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_campaign.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, campaign)
	}
}

// ListCampaigns is the admin dashboard listing: every campaign, active or
// not, with its submission count.
func ListCampaigns(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT
				c.id, c.title, c.description, c.badge_text, c.active, c.created_at, c.updated_at,
				COUNT(s.id)
			FROM campaign c
			LEFT OUTER JOIN submission s ON (c.id = s.campaign_id)
			GROUP BY c.id
			ORDER BY c.created_at DESC`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_campaigns", err)
			return
		}
		defer rows.Close()

		type campaignRow struct {
			model.Campaign
			Submissions int `json:"submissions"`
		}
		campaigns := []campaignRow{}
		for rows.Next() {
			c := campaignRow{}
			err = rows.Scan(
				&c.ID, &c.Title, &c.Description, &c.BadgeText, &c.Active,
				&c.CreatedAt, &c.UpdatedAt, &c.Submissions,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.get_campaigns.scan", err)
				return
			}
			campaigns = append(campaigns, c)
		}

		render.JSON(w, r, map[string]any{
			"campaigns": campaigns,
		})
	}
}

func UpdateCampaign(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "id")

		campaign := model.Campaign{}
		err := render.DecodeJSON(r.Body, &campaign)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		campaign.ID = campaignID

		if err := form.CheckSchema(campaign); err != nil {
			httpx.Message(w, r, http.StatusBadRequest, "update_campaign.check", err.Error())
			return
		}

		for i := range campaign.Fields {
			if campaign.Fields[i].ID == "" {
				campaign.Fields[i].ID = uuid.NewString()
			}
		}
		for i := range campaign.Documents {
			if campaign.Documents[i].ID == "" {
				campaign.Documents[i].ID = uuid.NewString()
			}
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		regional, err := json.Marshal(campaign.RegionalDeadlines)
		if err != nil {
			httpx.LogInternalError(w, "db.update_campaign.deadlines", err)
			return
		}
		res, err := tx.ExecContext(r.Context(), `
			UPDATE campaign
			SET
				title = ?,
				description = ?,
				badge_text = ?,
				active = ?,
				general_deadline = ?,
				regional_deadlines = ?,
				updated_at = ?
			WHERE id = ?`,
			campaign.Title, campaign.Description, campaign.BadgeText, campaign.Active,
			campaign.GeneralDeadline, string(regional), time.Now(), campaignID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_campaign", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_campaign.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "update_campaign", campaignID)
			return
		}

		// recreate the whole schema, same as create
		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM campaign_field WHERE campaign_id = ?`, campaignID)
		if err != nil {
			httpx.LogInternalError(w, "db.update_campaign.delete_fields", err)
			return
		}
		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM campaign_document WHERE campaign_id = ?`, campaignID)
		if err != nil {
			httpx.LogInternalError(w, "db.update_campaign.delete_documents", err)
			return
		}
		if err := insertCampaignSchema(r.Context(), tx, campaign); err != nil {
			httpx.LogInternalError(w, "db.update_campaign.schema", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_campaign.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteCampaign(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "id")

		res, err := app.ExecContext(r.Context(), `
			DELETE FROM campaign WHERE id = ?`, campaignID)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_campaign", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_campaign.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_campaign", campaignID)
			return
		}

		if err := app.Files.RemoveCampaign(campaignID); err != nil {
			log.Warnf("delete_campaign.examples: %s", err)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListSubmissions lists submissions for the admin, optionally filtered by
// campaign. The filtered view carries the field values, the global one is a
// summary.
func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := r.URL.Query().Get("campaign")
		if campaignID != "" {
			submissions, err := fetchSubmissions(r.Context(), app.DB, campaignID)
			if err != nil {
				httpx.LogInternalError(w, "db.get_submissions", err)
				return
			}
			render.JSON(w, r, map[string]any{
				"submissions": submissions,
			})
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT id, reference_id, campaign_id, created_at
			FROM submission
			ORDER BY created_at DESC`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}
		defer rows.Close()

		submissions := []model.Submission{}
		for rows.Next() {
			s := model.Submission{}
			err = rows.Scan(&s.ID, &s.ReferenceID, &s.CampaignID, &s.CreatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_submissions.scan", err)
				return
			}
			submissions = append(submissions, s)
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}

// CampaignStats returns the per-region aggregation and upcoming-deadline
// warnings for one campaign.
func CampaignStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "campaignID")

		campaign, err := fetchCampaign(r.Context(), app.DB, campaignID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "stats.campaign", campaignID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.stats.campaign", err)
			return
		}

		submissions, err := fetchSubmissions(r.Context(), app.DB, campaignID)
		if err != nil {
			httpx.LogInternalError(w, "db.stats.submissions", err)
			return
		}

		render.JSON(w, r, stats.Aggregate(campaign, submissions, time.Now()))
	}
}

// UploadExampleFile stores an example file for one document of a persisted
// campaign and records its public URL on the document.
func UploadExampleFile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "campaignID")
		docID := chi.URLParam(r, "docID")

		campaign, err := fetchCampaign(r.Context(), app.DB, campaignID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "upload_example.campaign", campaignID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.upload_example.campaign", err)
			return
		}
		if _, ok := campaign.DocumentByID(docID); !ok {
			httpx.LogNotFound(w, "upload_example.document", docID)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, form.MaxFileSize+16*1024)
		part, err := filePart(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "upload_example.multipart")
			return
		}
		defer part.Close()

		// examples may be any of the supported formats, whatever the
		// document itself demands from the member
		filename := part.FileName()
		example := model.Document{FileKind: model.FileBoth}
		if err := form.CheckAttachment(example, filename, 0); err != nil {
			httpx.Message(w, r, http.StatusBadRequest, "upload_example.check", err.Error())
			return
		}

		_, err = app.Files.SaveExample(campaignID, docID, filepath.Ext(filename), part)
		if errors.Is(err, form.ErrFileTooLarge) {
			httpx.Message(w, r, http.StatusBadRequest, "upload_example.size", err.Error())
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "upload_example.store", err)
			return
		}

		url := "/api/examples/" + campaignID + "/" + docID
		_, err = app.ExecContext(r.Context(), `
			UPDATE campaign_document
			SET example_file = ?
			WHERE campaign_id = ? AND id = ?`,
			url, campaignID, docID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.upload_example.record", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"message": "File di esempio caricato",
			"url":     url,
		})
	}
}

func DeleteExampleFile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "campaignID")
		docID := chi.URLParam(r, "docID")

		err := app.Files.RemoveExample(campaignID, docID)
		if errors.Is(err, os.ErrNotExist) {
			httpx.LogNotFound(w, "delete_example", campaignID+"/"+docID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "delete_example.store", err)
			return
		}

		_, err = app.ExecContext(r.Context(), `
			UPDATE campaign_document
			SET example_file = ''
			WHERE campaign_id = ? AND id = ?`,
			campaignID, docID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_example.record", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
