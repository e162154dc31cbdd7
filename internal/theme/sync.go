package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/jask/tenantshell/internal/database/repository"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Cache keeps the last fetched colour per tenant.
type Cache interface {
	Get(ctx context.Context, tenantID string) (*repository.ThemeColor, error)
	Put(ctx context.Context, c repository.ThemeColor) error
}

type Options struct {
	TenantID     string
	DefaultColor string
	BackendURL   string
	Interval     time.Duration
	Client       *http.Client
	Logger       zerolog.Logger
}

// Sync holds the tenant primary colour: the tenant default, then the cached
// value, then whatever the backend returns.
type Sync struct {
	cache  Cache
	opts   Options
	client *http.Client
	log    zerolog.Logger

	mu     sync.RWMutex
	color  string
	subs   map[int]func(string)
	nextID int

	scheduler gocron.Scheduler
}

func New(cache Cache, opts Options) *Sync {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Sync{
		cache:  cache,
		opts:   opts,
		client: client,
		log:    opts.Logger.With().Str("component", "theme").Logger(),
		color:  opts.DefaultColor,
		subs:   make(map[int]func(string)),
	}
}

func (s *Sync) PrimaryColor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

// Subscribe registers fn for colour changes.
func (s *Sync) Subscribe(fn func(string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Sync) set(color string) {
	s.mu.Lock()
	if color == s.color {
		s.mu.Unlock()
		return
	}
	s.color = color
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(color)
	}
}

// LoadCached applies the cached colour, if any.
func (s *Sync) LoadCached(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, s.opts.TenantID)
	if err != nil {
		return fmt.Errorf("read theme cache: %w", err)
	}
	if cached != nil && hexColor.MatchString(cached.PrimaryColor) {
		s.set(cached.PrimaryColor)
	}
	return nil
}

type colorResponse struct {
	PrimaryColor string `json:"primaryColor"`
}

// FetchFromBackend asks the tenant backend for the current colour and caches it.
func (s *Sync) FetchFromBackend(ctx context.Context) error {
	if s.opts.BackendURL == "" {
		return errors.New("fetch theme: no backend url")
	}
	u, err := url.Parse(s.opts.BackendURL)
	if err != nil {
		return fmt.Errorf("fetch theme: %w", err)
	}
	q := u.Query()
	q.Set("tenant", s.opts.TenantID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("fetch theme: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch theme: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch theme: unexpected status %d", resp.StatusCode)
	}
	var body colorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode theme: %w", err)
	}
	if !hexColor.MatchString(body.PrimaryColor) {
		return fmt.Errorf("decode theme: invalid colour %q", body.PrimaryColor)
	}
	if s.cache != nil {
		err := s.cache.Put(ctx, repository.ThemeColor{
			TenantID:     s.opts.TenantID,
			PrimaryColor: body.PrimaryColor,
			FetchedAt:    time.Now().UTC().Truncate(time.Second),
		})
		if err != nil {
			s.log.Warn().Err(err).Msg("theme cache write failed")
		}
	}
	s.set(body.PrimaryColor)
	return nil
}

// Start schedules FetchFromBackend every Interval, first run immediately.
// Without a backend url nothing is scheduled.
func (s *Sync) Start(ctx context.Context) error {
	if s.opts.BackendURL == "" || s.opts.Interval <= 0 {
		s.log.Debug().Msg("no theme backend configured, keeping tenant colour")
		return nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create theme scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.opts.Interval),
		gocron.NewTask(func() {
			if err := s.FetchFromBackend(ctx); err != nil {
				s.log.Warn().Err(err).Msg("theme sync failed, keeping current colour")
			}
		}),
		gocron.WithName("theme-sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule theme sync: %w", err)
	}
	s.scheduler = sched
	sched.Start()
	return nil
}

func (s *Sync) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}
