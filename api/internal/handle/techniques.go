package handle

import (
	"net/http"

	"mobtakir/api/internal/technique"
)

type TechniquesResponse struct {
	Default    technique.ID           `json:"default"`
	Techniques []technique.Descriptor `json:"techniques"`
}

// Techniques lists the catalog, filtered by ?q= when given.
func (h *Handle) Techniques(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	list := technique.Search(r.URL.Query().Get("q"))
	if list == nil {
		list = []technique.Descriptor{}
	}
	writeJSON(w, http.StatusOK, TechniquesResponse{
		Default:    technique.Default().ID,
		Techniques: list,
	})
}

func (h *Handle) Examples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, technique.Examples())
}

func (h *Handle) Engines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"default": h.defaultEngine,
		"engines": h.engs.Names(),
	})
}
