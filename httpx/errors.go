package httpx

import (
	"fmt"
	"net/http"

	"github.com/mbolis/keeper-responses/database"
	"github.com/mbolis/keeper-responses/log"
	"github.com/pkg/errors"
)

// LogInternalError logs err under code and answers 500.
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// LogStatus logs code at level and answers status with its default text.
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// LogStatusMsg is LogStatus with a formatted message, sent to the client too.
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	text := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", text)
	http.Error(w, text, status)
}

// LogStoreError answers with the status matching a storage error:
// 404 for missing records, 409 for conflicting writes, 500 otherwise.
func LogStoreError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		LogNotFound(w, code, err)
	case errors.Is(err, database.ErrStatusRegression), errors.Is(err, database.ErrDuplicate):
		LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "%s", errors.Cause(err))
	default:
		LogInternalError(w, "db."+code, err)
	}
}
