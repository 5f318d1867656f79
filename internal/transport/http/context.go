package http

import (
	"context"
	"net/http"

	"ecomdash/internal/analysis"
)

func contextWithKind(r *http.Request, kind analysis.Kind) context.Context {
	return context.WithValue(r.Context(), kindCtxKey{}, kind)
}

func kindFromContext(r *http.Request) analysis.Kind {
	kind, _ := r.Context().Value(kindCtxKey{}).(analysis.Kind)
	return kind
}
