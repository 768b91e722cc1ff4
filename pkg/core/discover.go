package core

import (
	"net/http"

	"github.com/joeydtaylor/durable-starter/pkg/codec"
)

type discoveredHandler struct {
	Name string `json:"name"`
}

type discoveredService struct {
	Name     string              `json:"name"`
	Type     string              `json:"ty"`
	Handlers []discoveredHandler `json:"handlers"`
}

type discovery struct {
	Services []discoveredService `json:"services"`
}

func describe(e *Endpoint) discovery {
	d := discovery{Services: []discoveredService{}}
	for _, b := range e.Services() {
		ty := "SERVICE"
		if b.Keyed {
			ty = "VIRTUAL_OBJECT"
		}
		s := discoveredService{Name: b.Name, Type: ty}
		for _, n := range b.Service.Names() {
			s.Handlers = append(s.Handlers, discoveredHandler{Name: n})
		}
		d.Services = append(d.Services, s)
	}
	return d
}

func discoverHandler(e *Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		b, err := codec.JSON.Marshal(describe(e))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, b, http.StatusOK)
	}
}
