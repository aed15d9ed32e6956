package http

import (
	"html/template"
	"net/http"

	"github.com/aussiebroadwan/threeds/pkg/httpx"
)

// pageTemplate is the buyer-facing interstitial. With an Action it posts the
// JWT to the issuer as soon as the page loads.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>3-D Secure</title>
</head>
<body>
<p>{{.Message}}</p>
{{- if .Action}}
<form id="cs3ds-stepup" method="POST" action="{{.Action}}">
<input type="hidden" name="JWT" value="{{.JWT}}">
<noscript><button type="submit">Continue</button></noscript>
</form>
<script>document.getElementById("cs3ds-stepup").submit();</script>
{{- end}}
{{- if .Next}}
<p><a href="{{.Next}}">Continue</a></p>
{{- end}}
</body>
</html>
`))

type pageData struct {
	Message string
	Action  string
	JWT     string
	Next    string
}

func renderPage(w http.ResponseWriter, status int, data pageData) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, data)
}
