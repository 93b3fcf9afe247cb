package lifecycle

import (
	"fmt"
	"net/url"

	"github.com/go-auth-nosql/internal/domain"
)

// VerificationLink builds {base}/user/verify/{accountID}/{token}.
func VerificationLink(base, accountID, token string) (string, error) {
	return joinLink(base, "user", "verify", accountID, token)
}

// ResetLink builds {redirectBase}/{accountID}/{token}. redirectBase must be an
// absolute http(s) URL.
func ResetLink(redirectBase, accountID, token string) (string, error) {
	return joinLink(redirectBase, accountID, token)
}

func joinLink(base string, elems ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid base url %q: %w", base, domain.ErrBadRequest)
	}
	return u.JoinPath(elems...).String(), nil
}

// CheckBase reports whether base can prefix a link.
func CheckBase(base string) error {
	_, err := joinLink(base)
	return err
}
