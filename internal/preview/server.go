package preview

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

// WSPath is the bridge endpoint the injected script connects back to.
const WSPath = "/__vizedit/ws"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The proxy and the page share an origin; the dev server behind
		// it is trusted local tooling.
		return true
	},
}

// Server reverse-proxies the target dev server, instrumenting every HTML
// response with the selection script.
type Server struct {
	target *url.URL
	bridge *Bridge
	http   *http.Server
}

// NewServer builds a server proxying targetURL and bridging through bridge.
func NewServer(listenAddr, targetURL string, bridge *Bridge) (*Server, error) {
	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("preview: parse target %q: %w", targetURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("preview: target %q must be an absolute http(s) URL", targetURL)
	}

	s := &Server{target: target, bridge: bridge}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = target.Host
		// Compressed bodies cannot be spliced; ask for plain HTML.
		req.Header.Del("Accept-Encoding")
	}
	proxy.ModifyResponse = s.modifyResponse
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if strings.Contains(err.Error(), "context canceled") {
			return
		}
		log.Printf("[WARN] preview: proxy %s: %v", r.URL.Path, err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(ScriptPath, s.handleScript)
	mux.HandleFunc(WSPath, s.handleWebSocket)
	mux.Handle("/", proxy)

	s.http = &http.Server{Addr: listenAddr, Handler: mux}
	return s, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Handler exposes the proxy mux.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe runs the proxy until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	log.Printf("[DEBUG] preview: proxying %s on %s", s.target, s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-store")
	io.WriteString(w, InlineScript())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] preview: websocket upgrade: %v", err)
		return
	}
	s.bridge.Attach(conn)
}

// modifyResponse splices the script tag into injectable HTML bodies.
func (s *Server) modifyResponse(resp *http.Response) error {
	if !ShouldInject(resp.Header.Get("Content-Type")) {
		return nil
	}

	body := resp.Body
	// Some dev servers compress regardless of Accept-Encoding.
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("preview: gunzip response: %w", err)
		}
		body = gz
		resp.Header.Del("Content-Encoding")
	}

	raw, err := io.ReadAll(body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("preview: read response body: %w", err)
	}

	injected := Inject(raw)
	resp.Body = io.NopCloser(bytes.NewReader(injected))
	resp.ContentLength = int64(len(injected))
	resp.Header.Set("Content-Length", strconv.Itoa(len(injected)))
	return nil
}
