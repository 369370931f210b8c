package httpapi

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

// The verify endpoint renders for a human in a browser tab, not for the
// extension, so responses are small templated pages instead of JSON.
var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

type pageData struct {
	Title   string
	Message string
}

func renderPage(c echo.Context, status int, title, message string) error {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, pageData{Title: title, Message: message}); err != nil {
		return c.HTML(http.StatusInternalServerError, "<h1>Something went wrong</h1>")
	}
	return c.HTML(status, buf.String())
}
