package middleware

import (
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/rs/cors"
)

// allowedOrigins reads the comma-separated CORS_ORIGINS variable. An empty
// list allows every origin.
func allowedOrigins() []string {
	env, ok := os.LookupEnv("CORS_ORIGINS")
	if !ok {
		return nil
	}
	var origins []string
	for o := range strings.SplitSeq(env, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func Cors() Middleware {
	origins := allowedOrigins()
	options := cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return len(origins) == 0 || slices.Contains(origins, origin)
		},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
	}
	return cors.New(options).Handler
}
