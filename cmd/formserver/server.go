package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"
)

//go:embed comment.js
var commentJS embed.FS

// server is the companion guestbook HTTP server spec.md §6 names ("a
// trivial companion HTTP form-handling server"), built on
// go-pkgz/routegroup + go-pkgz/rest rather than server.py's hand-rolled
// socket accept loop, per SPEC_FULL.md §4.11.
type server struct {
	listen string
	book   *guestbook
	router *routegroup.Bundle
}

func newServer(listen string) *server {
	s := &server{listen: listen, book: newGuestbook(), router: routegroup.New(http.NewServeMux())}
	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.HandleFunc("GET /", s.handleIndex)
	s.router.HandleFunc("POST /add", s.handleAdd)
	s.router.HandleFunc("GET /comment.js", s.handleCommentJS)
	s.router.HandleFunc("/", s.handleNotFound)
	return s
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.handleNotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, s.book.page())
}

func (s *server) handleAdd(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}
	params, err := formDecode(string(body))
	if err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}
	s.book.add(params)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, s.book.page())
}

func (s *server) handleCommentJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	http.ServeFileFS(w, r, commentJS, "comment.js")
}

func (s *server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "<!doctype html><h1>%s %s not found!</h1>", r.Method, r.URL.Path)
}

// run serves until ctx is cancelled, then shuts down gracefully, matching
// umputun-newscope server/server.go's Run.
func (s *server) run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.listen,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}
