package routes

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// fetchCampaign loads one campaign with its full field and document schema.
// Returns sql.ErrNoRows when the id is unknown.
func fetchCampaign(ctx context.Context, q querier, id string) (model.Campaign, error) {
	c := model.Campaign{}
	var regional string
	err := q.QueryRowContext(ctx, `
		SELECT id, title, description, badge_text, active, general_deadline, regional_deadlines, created_at, updated_at
		FROM campaign
		WHERE id = ?`,
		id,
	).Scan(
		&c.ID, &c.Title, &c.Description, &c.BadgeText, &c.Active,
		&c.GeneralDeadline, &regional, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}
	if regional != "" {
		if err := json.Unmarshal([]byte(regional), &c.RegionalDeadlines); err != nil {
			return c, err
		}
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, label, type, required, placeholder, options, region
		FROM campaign_field
		WHERE campaign_id = ?
		ORDER BY position`,
		id,
	)
	if err != nil {
		return c, err
	}
	defer rows.Close()

	for rows.Next() {
		f := model.Field{}
		var options string
		err = rows.Scan(&f.ID, &f.Label, &f.Type, &f.Required, &f.Placeholder, &options, &f.Region)
		if err != nil {
			return c, err
		}
		if options != "" {
			if err := json.Unmarshal([]byte(options), &f.Options); err != nil {
				return c, err
			}
		}
		c.Fields = append(c.Fields, f)
	}
	if err := rows.Err(); err != nil {
		return c, err
	}

	docRows, err := q.QueryContext(ctx, `
		SELECT id, label, required, file_kind, example_file
		FROM campaign_document
		WHERE campaign_id = ?
		ORDER BY position`,
		id,
	)
	if err != nil {
		return c, err
	}
	defer docRows.Close()

	for docRows.Next() {
		d := model.Document{}
		err = docRows.Scan(&d.ID, &d.Label, &d.Required, &d.FileKind, &d.ExampleFile)
		if err != nil {
			return c, err
		}
		c.Documents = append(c.Documents, d)
	}
	return c, docRows.Err()
}

// insertCampaignSchema writes the field and document lists of a campaign.
// Callers delete any previous rows first (update recreates the schema the
// same way it was created).
func insertCampaignSchema(ctx context.Context, tx *sql.Tx, c model.Campaign) error {
	fieldStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaign_field (campaign_id, position, id, label, type, required, placeholder, options, region)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer fieldStmt.Close()

	for i, f := range c.Fields {
		options := ""
		if len(f.Options) > 0 {
			raw, err := json.Marshal(f.Options)
			if err != nil {
				return err
			}
			options = string(raw)
		}
		_, err = fieldStmt.ExecContext(ctx, c.ID, i, f.ID, f.Label, f.Type, f.Required, f.Placeholder, options, f.Region)
		if err != nil {
			return err
		}
	}

	docStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaign_document (campaign_id, position, id, label, required, file_kind, example_file)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer docStmt.Close()

	for i, d := range c.Documents {
		_, err = docStmt.ExecContext(ctx, c.ID, i, d.ID, d.Label, d.Required, d.FileKind, d.ExampleFile)
		if err != nil {
			return err
		}
	}
	return nil
}

// fetchSubmission loads one submission record with its values and attached
// files. Returns sql.ErrNoRows when the id is unknown.
func fetchSubmission(ctx context.Context, q querier, id string) (model.Submission, error) {
	s := model.Submission{
		Values: map[string]string{},
		Files:  map[string]model.SubmissionFile{},
	}
	err := q.QueryRowContext(ctx, `
		SELECT id, reference_id, campaign_id, created_at
		FROM submission
		WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.ReferenceID, &s.CampaignID, &s.CreatedAt)
	if err != nil {
		return s, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT field_id, value FROM submission_value WHERE submission_id = ?`, id)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var fieldID, value string
		if err := rows.Scan(&fieldID, &value); err != nil {
			return s, err
		}
		s.Values[fieldID] = value
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	fileRows, err := q.QueryContext(ctx, `
		SELECT document_id, filename, size, uploaded_at FROM submission_file WHERE submission_id = ?`, id)
	if err != nil {
		return s, err
	}
	defer fileRows.Close()
	for fileRows.Next() {
		var docID string
		f := model.SubmissionFile{}
		if err := fileRows.Scan(&docID, &f.Name, &f.Size, &f.UploadedAt); err != nil {
			return s, err
		}
		s.Files[docID] = f
	}
	return s, fileRows.Err()
}

// fetchSubmissions loads every submission of a campaign, newest first,
// values included.
func fetchSubmissions(ctx context.Context, q querier, campaignID string) ([]model.Submission, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, reference_id, campaign_id, created_at
		FROM submission
		WHERE campaign_id = ?
		ORDER BY created_at DESC`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []model.Submission{}
	index := map[string]int{}
	for rows.Next() {
		s := model.Submission{Values: map[string]string{}}
		if err := rows.Scan(&s.ID, &s.ReferenceID, &s.CampaignID, &s.CreatedAt); err != nil {
			return nil, err
		}
		index[s.ID] = len(submissions)
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	valueRows, err := q.QueryContext(ctx, `
		SELECT v.submission_id, v.field_id, v.value
		FROM submission_value v
		INNER JOIN submission s ON (s.id = v.submission_id)
		WHERE s.campaign_id = ?`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer valueRows.Close()
	for valueRows.Next() {
		var subID, fieldID, value string
		if err := valueRows.Scan(&subID, &fieldID, &value); err != nil {
			return nil, err
		}
		if i, ok := index[subID]; ok {
			submissions[i].Values[fieldID] = value
		}
	}
	return submissions, valueRows.Err()
}
