package handler

import (
	"html/template"
	"net/http"
	"net/url"
)

var verifiedPage = template.Must(template.New("verified").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Email verification</title></head>
<body>
{{if .Failed}}<h1>Verification failed</h1>
<p>{{.Message}}</p>{{else}}<h1>Email verified</h1>
<p>Your account is verified. You can sign in now.</p>{{end}}
</body>
</html>
`))

// verifiedURL is the result page location with error and message encoded
// into its query string.
func verifiedURL(msg string) string {
	if msg == "" {
		return "/user/verified"
	}
	q := url.Values{}
	q.Set("error", "true")
	q.Set("message", msg)
	return "/user/verified?" + q.Encode()
}

// Verified renders the result of following a verification link.
func (h *UserHandler) Verified(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := struct {
		Failed  bool
		Message string
	}{Failed: q.Get("error") == "true", Message: q.Get("message")}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := verifiedPage.Execute(w, data); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}
