package routes

import (
	"io"
	"net/http"
	"path"
)

// serveStaticExport serves a front-end built as a static export. Pages are
// exported as "<route>.html", so extensionless paths try that file first.
// Missing files get the exported 404 page when there is one.
func serveStaticExport(dir string) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean("/" + r.URL.Path)

		if p != "/" && path.Ext(p) == "" && exists(root, p+".html") {
			page := r.Clone(r.Context())
			page.URL.Path = p + ".html"
			page.URL.RawPath = ""
			files.ServeHTTP(w, page)
			return
		}

		if !exists(root, p) {
			if notFound, err := root.Open("/404.html"); err == nil {
				defer notFound.Close()
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusNotFound)
				io.Copy(w, notFound)
				return
			}
		}

		files.ServeHTTP(w, r)
	})
}

func exists(root http.FileSystem, name string) bool {
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
