package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/oauth"
	"github.com/mbolis/keeper-responses/access"
	"github.com/mbolis/keeper-responses/config"
	"github.com/mbolis/keeper-responses/database"
	"golang.org/x/crypto/bcrypt"
)

const refreshTokenTTL = 8760 * time.Hour

// Claims carried by access tokens.
const (
	ClaimID          = "id"
	ClaimRole        = "role"
	ClaimDepartments = "departments"
)

func NewBearerServer(store *database.Storage, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(store), nil)
}

type credentialsVerifier struct {
	store *database.Storage
}

func CredentialsVerifier(store *database.Storage) oauth.CredentialsVerifier {
	return &credentialsVerifier{store}
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	hash, err := cs.store.GetPasswordHash(r.Context(), username)
	if err != nil {
		return err
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	return cs.store.StoreToken(context.Background(), credential, tokenID, refreshTokenID, time.Now().UTC().Add(refreshTokenTTL))
}
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	expiration, err := cs.store.ConsumeToken(context.Background(), credential, tokenID, refreshTokenID)
	if err != nil || expiration.Before(time.Now()) {
		return errors.New("could not refresh")
	}
	return nil
}
func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	employee, err := cs.store.GetEmployeeByEmail(r.Context(), credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		ClaimID:          employee.ID,
		ClaimRole:        string(employee.Role),
		ClaimDepartments: strings.Join(access.Departments(employee), ","),
	}, nil
}
func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}
func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
