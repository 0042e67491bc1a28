package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/luigilocane-sketch/ricorsi-sinafi/config"
	"github.com/luigilocane-sketch/ricorsi-sinafi/storage"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
	Files *storage.Disk
}
