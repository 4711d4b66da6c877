package router

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// Static serves the files under root at prefix. If root is a single file it
// is served at prefix itself. Root must exist when Static is called.
func (s *Server) Static(prefix, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		s.logger.Error("Static root does not exist", zap.String("root", root), zap.Error(err))
		return fmt.Errorf("static root %q: %w", root, err)
	}

	isFile := !info.IsDir()
	bp := s.NewBlueprint()
	bp.GET("/*", func(w http.ResponseWriter, r *http.Request) {
		match := MatchPath(r)
		if isFile {
			if match != "" {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, root)
			return
		}
		// Clean against "/" so the match path cannot climb out of root.
		name := filepath.Join(root, filepath.FromSlash(path.Clean("/"+match)))
		http.ServeFile(w, r, name)
	})

	s.RegisterBlueprint(bp, prefix)
	return nil
}
