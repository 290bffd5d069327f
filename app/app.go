package app

import (
	"time"

	"github.com/go-chi/oauth"
	"github.com/mbolis/keeper-responses/config"
	"github.com/mbolis/keeper-responses/database"
)

type App struct {
	*database.Storage
	*oauth.BearerServer
	config.Config

	// Clock stamps stored records; time.Now when nil.
	Clock func() time.Time
}

func (app App) Now() time.Time {
	if app.Clock == nil {
		return time.Now().UTC()
	}
	return app.Clock().UTC()
}
