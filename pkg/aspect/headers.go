package aspect

import (
	"net/http"
	"strings"

	"github.com/Suhaibinator/SRest/pkg/common"
)

// CORS sets the Access-Control-Allow-* headers on every response. Preflight
// requests still need an OPTIONS (or ANY) route to be answered.
func CORS(origins, methods, headers []string) common.Aspect {
	return common.AspectFuncs{
		BeforeFunc: func(w http.ResponseWriter, r *http.Request) {
			if len(origins) > 0 {
				w.Header().Set("Access-Control-Allow-Origin", strings.Join(origins, ", "))
			}
			if len(methods) > 0 {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
			}
			if len(headers) > 0 {
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(headers, ", "))
			}
		},
	}
}

// MaxBodySize limits the request body the handler can read to maxSize bytes.
func MaxBodySize(maxSize int64) common.Aspect {
	return common.AspectFuncs{
		BeforeFunc: func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
		},
	}
}
