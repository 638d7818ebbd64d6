package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vizedit/vizedit/internal/assist"
	"github.com/vizedit/vizedit/internal/config"
	"github.com/vizedit/vizedit/internal/editor"
	"github.com/vizedit/vizedit/internal/history"
	"github.com/vizedit/vizedit/internal/insert"
	"github.com/vizedit/vizedit/internal/nav"
	"github.com/vizedit/vizedit/internal/preview"
	"github.com/vizedit/vizedit/internal/protocol"
	"github.com/vizedit/vizedit/internal/screenshot"
	"github.com/vizedit/vizedit/internal/store"
	"github.com/vizedit/vizedit/internal/tools"
	"github.com/vizedit/vizedit/internal/tracker"
)

// app is the assembled editor runtime.
type app struct {
	cfg    *config.Config
	bridge *preview.Bridge
	server *preview.Server
	tools  *tools.EditorTools
}

// buildApp wires every component against the config found from dir.
func buildApp(dir string) (*app, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	hist := history.NewStore(cfg.History.Capacity)
	shots := screenshot.NewStore(store.Open(dir, "screenshots"))
	edits := tracker.New(store.Open(dir, "edits"), "session-"+uuid.NewString()[:8])
	engine := editor.NewEngine(hist, shots, edits)
	recent := insert.NewRecentList(store.Open(dir, "insert"))

	// The bridge's handlers close over components that are themselves
	// constructed with the bridge; they only fire once a page connects,
	// well after wiring completes.
	var (
		navTracker *nav.Tracker
		insEngine  *insert.Engine
	)

	bridge := preview.NewBridge(preview.Handlers{
		OnSelected: func(sel protocol.SelectedElement) {
			engine.SetSelection(sel)
			log.Printf("[DEBUG] selected %s", sel.Selector())
		},
		OnNavigateRequest: func(req protocol.NavigateRequest) {
			if !navTracker.NavigateTo(req.URL, "") {
				log.Printf("[WARN] navigation to %q blocked", req.URL)
			}
		},
		OnKeyChord: func(kc protocol.KeyChord) {
			engine.HandleKey(context.Background(), kc)
		},
		OnScriptReady: func(sr protocol.ScriptReady) {
			navTracker.Record(sr.URL, sr.Title)
		},
		OnInserted: func(ci protocol.ComponentInserted) {
			if !ci.Success {
				log.Printf("[WARN] insertion of %s failed in page", ci.Archetype)
			}
		},
	})
	if cfg.Preview.AwaitTimeoutMS > 0 {
		bridge.SetTimeout(time.Duration(cfg.Preview.AwaitTimeoutMS) * time.Millisecond)
	}

	navTracker = nav.NewTracker(bridge)
	insEngine = insert.NewEngine(bridge, recent)
	engine.AttachSurface(bridge)

	server, err := preview.NewServer(cfg.Preview.Listen, cfg.Preview.Target, bridge)
	if err != nil {
		return nil, err
	}

	et := &tools.EditorTools{
		Engine:  engine,
		History: hist,
		Nav:     navTracker,
		Insert:  insEngine,
		Edits:   edits,
	}
	if cfg.Assist.Enabled {
		summarizer, err := assist.NewSummarizer(cfg.Assist.Model)
		switch {
		case err == nil:
			et.Summarizer = summarizer
		case errors.Is(err, assist.ErrNoAPIKey):
			log.Printf("[DEBUG] assist disabled: %v", err)
		default:
			return nil, err
		}
	}

	return &app{cfg: cfg, bridge: bridge, server: server, tools: et}, nil
}

func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
