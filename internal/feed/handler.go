package feed

import (
	"net/http"
)

const ContentType = "text/xml;charset=UTF-8"

func (s Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rss, err := s.Render(r.Context())
	if err != nil {
		s.tel.ReportBroken(report_feed_render, err)
		http.Error(w, "Could not fetch today's releases.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", ContentType)
	w.Write([]byte(rss))
}

// Register mounts the feed on both the current and the legacy path.
func (s Service) Register(mux *http.ServeMux) {
	mux.Handle("GET "+FeedPath, s)
	mux.Handle("GET /feed.xml", s)
}
