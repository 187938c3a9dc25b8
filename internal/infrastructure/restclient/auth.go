package restclient

import (
	"encoding/base64"
	"net/http"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

// Authorizer decorates an outbound request with credentials.
// It returns a *entities.ConfigurationError when the credential variant is not supported.
type Authorizer func(req *http.Request) error

// TokenOf extracts the token of the supported credential variants.
func TokenOf(credential entities.Credential) (string, error) {
	switch typed := credential.(type) {
	case entities.PersonalAccessToken:
		return typed.Token, nil
	case *entities.PersonalAccessToken:
		if typed != nil {
			return typed.Token, nil
		}
	}
	return "", entities.NewConfigurationError("unsupported credential type %T", credential)
}

// BasicAuthorizer sends the token as the basic-auth password of a fixed username.
func BasicAuthorizer(username string, credential entities.Credential) Authorizer {
	return func(req *http.Request) error {
		token, err := TokenOf(credential)
		if err != nil {
			return err
		}
		auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + token))
		req.Header.Set("Authorization", "Basic "+auth)
		return nil
	}
}
