package http

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ecomdash/internal/analysis"
)

// sectionParam is the repeatable query parameter carrying the selection.
const sectionParam = "section"

// selectionRequest is the sidebar form: zero or more analysis names.
type selectionRequest struct {
	Sections []string `query:"section" validate:"dive,analysis"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterAlias("analysis", "oneof="+strings.Join(analysis.CatalogNames(), " "))
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// parseSelection reads ?section=a&section=b (comma lists allowed). No
// sections selects everything.
func parseSelection(v *validator.Validate, r *http.Request) (analysis.Selection, error) {
	var req selectionRequest
	for _, raw := range r.URL.Query()[sectionParam] {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.Sections = append(req.Sections, name)
			}
		}
	}

	if err := v.Struct(req); err != nil {
		return 0, err
	}
	return analysis.ParseSelection(req.Sections)
}
