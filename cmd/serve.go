package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/notify"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/workflow"
)

var (
	servePort   int
	serveDryRun bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP session server",
	Long:  "Exposes the workflow over HTTP: create sessions, apply stage commands, and download outcome reports.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		camp, err := resolveCampaign("", "", "", 0)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		sender := initMarketing()
		if serveDryRun {
			sender = dryRunClient{}
		}
		ctrl := newController(initScraper(), newDispatcher(sender, camp), camp)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st, ctrl),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// server holds the handler dependencies.
type server struct {
	store store.Store
	ctrl  *workflow.Controller
}

func newRouter(st store.Store, ctrl *workflow.Controller) http.Handler {
	s := &server{store: st, ctrl: ctrl}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/command", s.handleCommand)
			r.Get("/ledger.csv", s.handleLedgerCSV)
		})
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := workflow.NewSession()
	if err := s.store.SaveSession(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context(), store.SessionFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if sessions == nil {
		sessions = []store.SessionSummary{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// commandResponse is the body returned after applying a workflow command.
type commandResponse struct {
	Session *workflow.Session `json:"session"`
	Notices []workflow.Notice `json:"notices"`
}

func (s *server) handleCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := s.store.GetSession(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	var cmd workflow.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, eris.Wrap(err, "decode command"))
		return
	}

	ledgerBefore := len(sess.Ledger)
	notices, err := s.ctrl.Apply(ctx, sess, cmd)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	if err := s.store.SaveSession(ctx, sess); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if appended := sess.Ledger[ledgerBefore:]; len(appended) > 0 {
		if err := s.store.AppendOutcomes(ctx, sess.ID, appended); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	if notices == nil {
		notices = []workflow.Notice{}
	}
	writeJSON(w, http.StatusOK, commandResponse{Session: sess, Notices: notices})
}

func (s *server) handleLedgerCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListOutcomes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="notification_report.csv"`)
	if err := notify.WriteLedgerCSV(w, rows); err != nil {
		zap.L().Error("write ledger csv", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "serve with a stubbed marketing client")
	rootCmd.AddCommand(serveCmd)
}
