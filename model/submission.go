package model

import "time"

// Submission is one member's validated response to a campaign. The record is
// immutable after creation; only the attached file set grows as the
// per-document uploads land.
type Submission struct {
	ID          string                    `json:"id"`
	ReferenceID string                    `json:"referenceId"`
	CampaignID  string                    `json:"campaignId"`
	Values      map[string]string         `json:"values"`
	Files       map[string]SubmissionFile `json:"files,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

// SubmissionFile is the stored metadata of one attached document.
type SubmissionFile struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// MissingDocuments lists the required document ids not yet attached.
func (s Submission) MissingDocuments(c Campaign) []string {
	missing := []string{}
	for _, d := range c.Documents {
		if !d.Required {
			continue
		}
		if _, ok := s.Files[d.ID]; !ok {
			missing = append(missing, d.ID)
		}
	}
	return missing
}

type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Nome      string    `json:"nome"`
	Cognome   string    `json:"cognome"`
	Email     string    `json:"email"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Invite is a single-use, time-limited token allowing self-registration as a
// new admin. The link is handed out manually, no mail is ever sent.
type Invite struct {
	Token     string    `json:"token"`
	Nome      string    `json:"nome"`
	Cognome   string    `json:"cognome"`
	Email     string    `json:"email"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
}

// Consumable reports whether the invite can still be redeemed at the given
// instant.
func (i Invite) Consumable(now time.Time) bool {
	return !i.Used && now.Before(i.ExpiresAt)
}
