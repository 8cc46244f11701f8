package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/benprew/deptadmin"
	"golang.org/x/text/message"
)

var fMap = template.FuncMap{
	"urlFor": urlFor,
	// replaced per render with the server's printer
	"t": func(s string) string { return s },
}

type LayoutData struct {
	Notices []deptadmin.Notice
	Lang    string
	Page    interface{} // page specific parameters
}

//go:embed views
var views embed.FS

// content is the template string
func LoadContentTemplate(filename string) (*template.Template, error) {
	return template.Must(templates.Clone()).ParseFS(views, filename)
}

func (s *Server) RenderTemplate(w http.ResponseWriter, r *http.Request, template string, templateParams interface{}) error {
	tmpl, err := LoadContentTemplate(template)
	if err != nil {
		return err
	}
	tmpl.Funcs(translateFuncs(s.Printer))

	params := LayoutData{
		Notices: s.drainNotices(r),
		Lang:    s.Locale,
		Page:    templateParams,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "layout.tmpl", params)
}

var templates = defaultTemplates()

func defaultTemplates() *template.Template {
	tmpl := template.Must(
		template.New("layout.tmpl").Funcs(fMap).ParseFS(views, "views/layout.tmpl"))

	return template.Must(tmpl.ParseFS(views, "views/partials/*.tmpl"))
}

func translateFuncs(p *message.Printer) template.FuncMap {
	return template.FuncMap{
		"t": func(s string) string { return deptadmin.Translate(p, s) },
	}
}

func urlFor(i deptadmin.Item, action string) string {
	return fmt.Sprintf("/%s/%d/%s", i.ItemType(), i.ItemID(), action)
}
