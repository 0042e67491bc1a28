package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/luigilocane-sketch/ricorsi-sinafi/form"
	"github.com/luigilocane-sketch/ricorsi-sinafi/log"
	"github.com/luigilocane-sketch/ricorsi-sinafi/model"
)

// seedDefaults creates the bootstrap admin account and the default campaign
// on an empty database, so a fresh install is usable right away.
func seedDefaults(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedCampaign(db)
}

func seedAdmin(db *sql.DB) error {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM admin").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO admin (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		uuid.NewString(),
		"admin",
		string(hash),
		time.Now(),
	)
	if err != nil {
		return err
	}

	log.Warn("default admin created: username=admin password=admin123, change it")
	return nil
}

func seedCampaign(db *sql.DB) error {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM campaign").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	draft := defaultCampaignDraft()
	if err := draft.Check(); err != nil {
		return err
	}

	c := draft.Campaign
	c.ID = uuid.NewString()
	now := time.Now()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	regional, err := json.Marshal(c.RegionalDeadlines)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO campaign (id, title, description, badge_text, active, general_deadline, regional_deadlines, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Description, c.BadgeText, c.Active,
		c.GeneralDeadline, string(regional), now, now,
	)
	if err != nil {
		return err
	}

	for i, f := range c.Fields {
		options := ""
		if len(f.Options) > 0 {
			raw, err := json.Marshal(f.Options)
			if err != nil {
				return err
			}
			options = string(raw)
		}
		_, err = tx.Exec(`
			INSERT INTO campaign_field (campaign_id, position, id, label, type, required, placeholder, options, region)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, f.ID, f.Label, f.Type, f.Required, f.Placeholder, options, f.Region,
		)
		if err != nil {
			return err
		}
	}
	for i, d := range c.Documents {
		_, err = tx.Exec(`
			INSERT INTO campaign_document (campaign_id, position, id, label, required, file_kind, example_file)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, d.ID, d.Label, d.Required, d.FileKind, d.ExampleFile,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("default campaign created:", c.Title)
	return nil
}

func defaultCampaignDraft() *form.Draft {
	draft := form.NewDraft()
	draft.Campaign.Title = "Ricorso Indennità Compensativa"
	draft.Campaign.Description = "Ricorso collettivo per l'indennità compensativa riservato ai soci Si.Na.Fi."

	type fieldSpec struct {
		id, label   string
		typ         model.FieldType
		placeholder string
	}
	for _, fs := range []fieldSpec{
		{"nome", "Nome", model.FieldText, "Mario"},
		{"cognome", "Cognome", model.FieldText, "Rossi"},
		{"matricola", "Matricola", model.FieldText, "123456"},
		{"telefono", "Telefono", model.FieldTel, "+39 333 1234567"},
		{"reparto", "Reparto di Servizio", model.FieldText, "Nucleo PEF Milano"},
		{"email", "Email", model.FieldEmail, "mario.rossi@email.com"},
	} {
		f := draft.AddField()
		f.ID = fs.id
		f.Label = fs.label
		f.Type = fs.typ
		f.Placeholder = fs.placeholder
	}

	region := draft.AddField()
	region.ID = "regione"
	region.Label = "Regione"
	region.Type = model.FieldSelect
	region.Region = true
	region.Options = []string{
		"Abruzzo", "Basilicata", "Calabria", "Campania", "Emilia-Romagna",
		"Friuli-Venezia Giulia", "Lazio", "Liguria", "Lombardia", "Marche",
		"Molise", "Piemonte", "Puglia", "Sardegna", "Sicilia", "Toscana",
		"Trentino-Alto Adige", "Umbria", "Valle d'Aosta", "Veneto",
	}

	type docSpec struct {
		id, label string
		kind      model.FileKind
	}
	for _, ds := range []docSpec{
		{"istanza", "Istanza", model.FilePDF},
		{"carta_identita", "Carta d'Identità", model.FileBoth},
		{"codice_fiscale", "Codice Fiscale", model.FileBoth},
		{"preavviso_diniego", "Preavviso di Diniego", model.FilePDF},
		{"diniego", "Diniego", model.FilePDF},
		{"procura_liti", "Procura alle Liti", model.FilePDF},
	} {
		d, err := draft.AddDocument()
		if err != nil {
			break
		}
		d.ID = ds.id
		d.Label = ds.label
		d.FileKind = ds.kind
	}

	return draft
}
