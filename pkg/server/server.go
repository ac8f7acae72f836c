// Package server exposes the simulator over HTTP: a single-page dashboard,
// a JSON simulation endpoint and a CSV download helper. Every request runs
// an independent simulation scoped to the request context, so concurrent
// requests share nothing mutable.
package server

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"qzft/pkg/archive"
	"qzft/pkg/config"
	"qzft/pkg/field"
	"qzft/pkg/render"
	"qzft/pkg/sim"
)

//go:embed index.html
var indexHTML []byte

// Server handles dashboard traffic.
type Server struct {
	cfg    config.Config
	logger *zap.Logger
	mux    *http.ServeMux
}

// New builds a dashboard server over the given configuration.
func New(cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /", s.handleIndex)
	s.mux.HandleFunc("POST /run_simulation", s.handleRunSimulation)
	s.mux.HandleFunc("POST /download_csv", s.handleDownloadCSV)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// zeroJSON is one zero candidate in the response payload.
type zeroJSON struct {
	Real    float64 `json:"real"`
	Imag    float64 `json:"imag"`
	ZetaAbs float64 `json:"zeta_abs"`
}

// runResponse is the /run_simulation payload.
type runResponse struct {
	PlotImage  string             `json:"plot_image"`
	Zeros      []zeroJSON         `json:"zeros"`
	CSVData    string             `json:"csv_data"`
	Parameters map[string]float64 `json:"parameters"`
}

func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	var parseErr error
	formFloat := func(key string, def float64) float64 {
		v := r.FormValue(key)
		if v == "" {
			return def
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("parameter %s: %w", key, err)
		}
		return f
	}

	reMin := formFloat("re_min", s.cfg.Region.ReMin)
	reMax := formFloat("re_max", s.cfg.Region.ReMax)
	imMin := formFloat("im_min", s.cfg.Region.ImMin)
	imMax := formFloat("im_max", s.cfg.Region.ImMax)
	// the dashboard defaults to a coarser step than the CLI so interactive
	// requests stay quick
	step := formFloat("step_size", s.cfg.HTTP.StepSize)
	alpha := formFloat("alpha", s.cfg.Simulation.Alpha)
	if parseErr != nil {
		s.logger.Warn("rejected simulation request", zap.Error(parseErr))
		http.Error(w, "invalid simulation parameters", http.StatusBadRequest)
		return
	}

	params := sim.FromConfig(s.cfg)
	params.Region = field.Region{ReMin: reMin, ReMax: reMax, ImMin: imMin, ImMax: imMax, Step: step}
	params.Alpha = alpha

	res, err := sim.Run(r.Context(), params, s.logger)
	if err != nil {
		// the taxonomy stays distinguishable here even though the client
		// only sees a generic failure
		switch {
		case errors.Is(err, field.ErrInvalidRegion):
			s.logger.Warn("rejected simulation request", zap.Error(err))
			http.Error(w, "invalid simulation parameters", http.StatusBadRequest)
		default:
			s.logger.Error("simulation failed", zap.Error(err))
			http.Error(w, "simulation failed", http.StatusInternalServerError)
		}
		return
	}

	var png bytes.Buffer
	if err := render.WritePNG(&png, res.Grid, res.ZetaAbs, res.Fields, res.Zeros, render.Options{}); err != nil {
		s.logger.Error("plot rendering failed", zap.Error(err))
		http.Error(w, "simulation failed", http.StatusInternalServerError)
		return
	}

	var csvBuf bytes.Buffer
	if err := archive.WriteCSV(&csvBuf, res.Grid, res.ZetaAbs, res.Fields); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
		http.Error(w, "simulation failed", http.StatusInternalServerError)
		return
	}

	zeros := make([]zeroJSON, 0, len(res.Zeros))
	for _, z := range res.Zeros {
		zeros = append(zeros, zeroJSON{Real: z.Sigma, Imag: z.T, ZetaAbs: z.Magnitude})
	}

	resp := runResponse{
		PlotImage: base64.StdEncoding.EncodeToString(png.Bytes()),
		Zeros:     zeros,
		CSVData:   csvBuf.String(),
		Parameters: map[string]float64{
			"re_min":    reMin,
			"re_max":    reMax,
			"im_min":    imMin,
			"im_max":    imMax,
			"step_size": step,
			"alpha":     alpha,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	data := r.FormValue("csv_data")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="qzft_data.csv"`)
	w.Write([]byte(data))
}

