package entities

// Credential is the closed set of authentication material an adapter can receive.
// PersonalAccessToken is currently the only variant.
type Credential interface {
	credential()
}

// PersonalAccessToken authenticates with a provider-issued token.
type PersonalAccessToken struct {
	Token string `json:"-"`
}

func (PersonalAccessToken) credential() {}

func (t PersonalAccessToken) String() string { return "PersonalAccessToken(***)" }
