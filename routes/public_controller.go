package routes

import (
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
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
)

// PublicListCampaigns lists campaign summaries. The optional ?active=bool
// filter is what keeps inactive campaigns out of the public listing.
func PublicListCampaigns(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `
			SELECT id, title, description, badge_text, active, created_at
			FROM campaign`
		args := []any{}
		switch r.URL.Query().Get("active") {
		case "true":
			query += " WHERE active = ?"
			args = append(args, true)
		case "false":
			query += " WHERE active = ?"
			args = append(args, false)
		}
		query += " ORDER BY created_at DESC"

		rows, err := app.QueryContext(r.Context(), query, args...)
		if err != nil {
			httpx.LogInternalError(w, "db.get_campaigns", err)
			return
		}
		defer rows.Close()

		campaigns := []model.Campaign{}
		for rows.Next() {
			c := model.Campaign{}
			err = rows.Scan(&c.ID, &c.Title, &c.Description, &c.BadgeText, &c.Active, &c.CreatedAt)
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

// GetCampaign returns the full schema. The active flag is part of the
// payload: public clients reroute to the listing when it is false.
func GetCampaign(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "id")

		campaign, err := fetchCampaign(r.Context(), app.DB, campaignID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_campaign", campaignID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_campaign", err)
			return
		}

		render.JSON(w, r, campaign)
	}
}

type submissionRequest struct {
	CampaignID string            `json:"campaignId"`
	Values     map[string]string `json:"values"`
}

// CreateSubmission validates the field values against the campaign schema,
// all-or-nothing, and creates the submission record. Document uploads follow
// as separate per-document calls; the response lists what is still missing.
func CreateSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := submissionRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		campaign, err := fetchCampaign(r.Context(), app.DB, req.CampaignID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "create_submission.campaign", req.CampaignID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.create_submission.campaign", err)
			return
		}

		if errs := form.ValidateFields(campaign.Fields, req.Values); len(errs) > 0 {
			httpx.ValidationErrors(w, r, "create_submission.validate", errs)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		submissionID := uuid.NewString()
		referenceID := fmt.Sprintf("REF-%d", time.Now().Unix())
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO submission (id, reference_id, campaign_id, created_at)
			VALUES (?, ?, ?, ?)`,
			submissionID, referenceID, campaign.ID, time.Now(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}

		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO submission_value (submission_id, field_id, value)
			VALUES (?, ?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission.values.prepare", err)
			return
		}
		defer stmt.Close()

		// only values the schema knows about are kept
		for _, f := range campaign.Fields {
			value, ok := req.Values[f.ID]
			if !ok {
				continue
			}
			_, err = stmt.ExecContext(r.Context(), submissionID, f.ID, value)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_submission.values.insert", err)
				return
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission.commit", err)
			return
		}

		// nothing attached yet, so this lists every required document
		missing := model.Submission{}.MissingDocuments(campaign)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":               submissionID,
			"referenceId":      referenceID,
			"missingDocuments": missing,
		})
	}
}

// GetSubmission returns the record with its attached files and the required
// documents still missing, so an interrupted upload sequence can resume.
func GetSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := chi.URLParam(r, "id")

		submission, err := fetchSubmission(r.Context(), app.DB, submissionID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_submission", submissionID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_submission", err)
			return
		}

		campaign, err := fetchCampaign(r.Context(), app.DB, submission.CampaignID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submission.campaign", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submission":       submission,
			"missingDocuments": submission.MissingDocuments(campaign),
		})
	}
}

// UploadSubmissionFile attaches one document to an existing submission. Each
// call is independent; re-uploading the same document id overwrites the
// previous file, which is also how a client resumes after a failed upload.
func UploadSubmissionFile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := chi.URLParam(r, "id")
		docID := chi.URLParam(r, "docID")

		submission, err := fetchSubmission(r.Context(), app.DB, submissionID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "upload.submission", submissionID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.upload.submission", err)
			return
		}

		campaign, err := fetchCampaign(r.Context(), app.DB, submission.CampaignID)
		if err != nil {
			httpx.LogInternalError(w, "db.upload.campaign", err)
			return
		}
		doc, ok := campaign.DocumentByID(docID)
		if !ok {
			httpx.LogNotFound(w, "upload.document", docID)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, form.MaxFileSize+16*1024)
		part, err := filePart(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "upload.multipart")
			return
		}
		defer part.Close()

		filename := part.FileName()
		if err := form.CheckAttachment(doc, filename, 0); err != nil {
			httpx.Message(w, r, http.StatusBadRequest, "upload.check", err.Error())
			return
		}

		size, err := app.Files.SaveSubmissionFile(submissionID, docID, filepath.Ext(filename), part)
		if errors.Is(err, form.ErrFileTooLarge) {
			httpx.Message(w, r, http.StatusBadRequest, "upload.size", err.Error())
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "upload.store", err)
			return
		}

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO submission_file (submission_id, document_id, filename, size, uploaded_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (submission_id, document_id)
			DO UPDATE SET filename = excluded.filename, size = excluded.size, uploaded_at = excluded.uploaded_at`,
			submissionID, docID, filename, size, time.Now(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.upload.record", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"message":  "File caricato con successo",
			"filename": filename,
		})
	}
}

// GetExampleFile serves the admin-provided example for a document.
func GetExampleFile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID := chi.URLParam(r, "campaignID")
		docID := chi.URLParam(r, "docID")

		path, err := app.Files.ExamplePath(campaignID, docID)
		if err != nil {
			httpx.LogNotFound(w, "get_example", campaignID+"/"+docID)
			return
		}
		http.ServeFile(w, r, path)
	}
}

// filePart walks the multipart stream to the part named "file".
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}
