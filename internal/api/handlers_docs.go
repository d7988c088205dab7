package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// handleListDocuments lists the converted documents in the output
// directory.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	matches, err := filepath.Glob(filepath.Join(s.cfg.OutputDir, "*.texi"))
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sort.Strings(matches)

	docs := make([]map[string]any, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		base := filepath.Base(path)
		docs = append(docs, map[string]any{
			"name":        strings.TrimSuffix(base, ".texi"),
			"file":        base,
			"size_bytes":  info.Size(),
			"modified_at": info.ModTime(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}
