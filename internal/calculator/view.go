package calculator

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/calculator.html"))

type key struct {
	Value string
	Label string
}

var keypad = [][]key{
	{{"C", "C"}, {"Backspace", "⌫"}, {"/", "÷"}, {"*", "×"}},
	{{"7", "7"}, {"8", "8"}, {"9", "9"}, {"-", "−"}},
	{{"4", "4"}, {"5", "5"}, {"6", "6"}, {"+", "+"}},
	{{"1", "1"}, {"2", "2"}, {"3", "3"}, {"=", "="}},
	{{"0", "0"}, {".", "."}},
}

type pageData struct {
	State     State
	Keypad    [][]key
	CSRFField template.HTML
}

// renderPage writes nothing when the template fails, leaving the response
// free for an error.
func renderPage(w http.ResponseWriter, r *http.Request, status int, s State) error {
	data := pageData{
		State:     s,
		Keypad:    keypad,
		CSRFField: csrf.TemplateField(r),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
	return nil
}
