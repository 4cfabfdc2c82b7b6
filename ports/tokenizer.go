package ports

import "github.com/layer-3/humangate/core"

// Tokenizer converts humanity tokens to portable signed credentials and back
type Tokenizer interface {
	TokenToCredential(token core.HumanityToken) (string, error)
	CredentialToToken(credential string) (*core.HumanityToken, error)
}
