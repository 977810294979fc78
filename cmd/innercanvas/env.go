package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/innercanvas/innercanvas/internal/api"
	"github.com/innercanvas/innercanvas/internal/archive"
	"github.com/innercanvas/innercanvas/internal/config"
	"github.com/innercanvas/innercanvas/internal/counsel"
	"github.com/innercanvas/innercanvas/internal/diary"
	"github.com/innercanvas/innercanvas/internal/doodle"
	"github.com/innercanvas/innercanvas/internal/journal"
	"github.com/innercanvas/innercanvas/internal/session"
	"github.com/innercanvas/innercanvas/internal/token"
)

// reissueWindow triggers a proactive token refresh at startup when the stored
// token is already expired or about to be.
const reissueWindow = time.Minute

type runtimeFlags struct {
	baseURL   string
	counselor string
	doodle    string
	noArchive bool
}

type runtimeEnv struct {
	Config     *config.Config
	Session    *session.Store
	Diary      *diary.Store
	API        *api.Client
	Controller *journal.Controller
	Archive    *archive.Archive

	doodleMu      sync.Mutex
	doodleBytes   []byte
	doodleWatcher *doodle.Watcher
}

func (r *runtimeEnv) Close() {
	if r.doodleWatcher != nil {
		if err := r.doodleWatcher.Stop(); err != nil {
			log.Printf("⚠️  Failed to stop doodle watcher: %v", err)
		}
	}
	if r.Archive != nil {
		if err := r.Archive.Close(); err != nil {
			log.Printf("⚠️  Failed to close archive: %v", err)
		}
	}
}

// Doodle returns the current doodle bytes, or nil when none is loaded.
func (r *runtimeEnv) Doodle() []byte {
	r.doodleMu.Lock()
	defer r.doodleMu.Unlock()
	return r.doodleBytes
}

func (r *runtimeEnv) setDoodle(data []byte) {
	r.doodleMu.Lock()
	r.doodleBytes = data
	r.doodleMu.Unlock()
}

func prepareRuntimeEnv(ctx context.Context, flags runtimeFlags) (*runtimeEnv, error) {
	cfgManager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	cfg, err := cfgManager.Load()
	if err != nil {
		log.Printf("⚠️  Failed to load user config: %v", err)
		cfg = &config.Config{}
	} else if cfgManager.Exists() {
		log.Printf("User config loaded from: %s", cfgManager.GetConfigPath())
	}

	// Flags override config.
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.counselor != "" {
		cfg.Counselor = flags.counselor
	}
	if flags.doodle != "" {
		cfg.DoodleFile = flags.doodle
	}
	if flags.noArchive {
		cfg.NoArchive = true
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}

	tokens := token.NewStore(cfgManager.Dir())
	sess := session.NewStore(tokens)

	client := api.New(api.Options{
		BaseURL: cfg.BaseURL,
		Tokens:  tokens,
		Session: sess,
		OnSessionExpired: func() {
			fmt.Println("\n🔒 세션이 만료되었습니다. 다시 로그인해주세요.")
		},
	})

	counselor, err := counsel.NewFromConfig(cfg, client)
	if err != nil {
		return nil, err
	}
	if cfg.Counselor != "" && cfg.Counselor != "remote" {
		log.Printf("🤖 Direct counselor mode: %s", cfg.Counselor)
	}

	env := &runtimeEnv{
		Config:  cfg,
		Session: sess,
		Diary:   diary.NewStore(),
		API:     client,
	}

	if !cfg.NoArchive {
		arc, err := archive.Open(ctx, filepath.Join(cfgManager.Dir(), "archive"))
		if err != nil {
			log.Printf("⚠️  Failed to open archive: %v (review/search disabled)", err)
		} else {
			env.Archive = arc
		}
	}

	// journal.Archiver is an interface; a typed nil *Archive must not reach it.
	if env.Archive != nil {
		env.Controller = journal.New(client, sess, env.Diary, counselor, env.Archive)
	} else {
		env.Controller = journal.New(client, sess, env.Diary, counselor, nil)
	}

	if cfg.DoodleFile != "" {
		setupDoodle(env, cfg.DoodleFile)
	}

	restoreSession(ctx, env, tokens)
	return env, nil
}

// setupDoodle loads the configured doodle file and watches it for changes.
// A missing or invalid file disables the doodle but never fails startup.
func setupDoodle(env *runtimeEnv, path string) {
	data, err := doodle.Load(path)
	if err != nil {
		log.Printf("⚠️  %v (continuing without a doodle)", err)
	} else {
		env.setDoodle(data)
		log.Printf("🎨 Doodle loaded: %s (%d bytes)", path, len(data))
	}

	watcher, err := doodle.NewWatcher(path)
	if err != nil {
		log.Printf("⚠️  Failed to create doodle watcher: %v", err)
		return
	}
	watcher.OnChange(env.setDoodle)
	if err := watcher.Start(); err != nil {
		log.Printf("⚠️  Failed to watch doodle: %v", err)
		return
	}
	env.doodleWatcher = watcher
}

// restoreSession rehydrates the auth state from the persisted token. A token
// close to expiry is reissued first; any failure clears the local session.
func restoreSession(ctx context.Context, env *runtimeEnv, tokens *token.Store) {
	tok := tokens.Load()
	if tok == "" {
		return
	}

	if api.TokenExpiresWithin(tok, reissueWindow) {
		if _, err := env.API.Reissue(ctx); err != nil {
			log.Printf("⚠️  Failed to refresh stored session: %v", err)
			env.Session.ClearAuth()
			return
		}
	}

	user, err := env.API.Me(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to restore session: %v", err)
		env.Session.ClearAuth()
		return
	}

	env.Session.SetAuth(*user, tokens.Load())
	log.Printf("✅ Welcome back, %s", user.Username)
}
