package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitquest/pkg"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIP, err := pkg.ReadUserIP(r)
			if err != nil {
				userIP = "unknown"
			}
			log.Tracef(" ====> request [%s] path: [%s] [ip: %s] [UA: %s]", r.Method, r.URL.Path, userIP, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r)
		})
	}
}
