package assets

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/unify/engine/core"
	"github.com/spaghettifunk/unify/engine/systems"
)

const (
	StartText      = "0%"
	CompletionText = "100%"
)

// Presenter displays load progress. It is only called from the coordinator's
// callback queue.
type Presenter interface {
	FadeIn()
	FadeOut()
	Visible() bool
	Text() string
	SetText(text string)
}

// Dispatcher runs fetch jobs, usually a *systems.JobSystem.
type Dispatcher interface {
	Submit(jt systems.JobTask) error
}

// CallbackQueue runs the resolutions posted by fetch jobs, one at a time and
// in posting order. Post must not block. A *systems.CallbackQueue drained by
// the host between frames is one.
type CallbackQueue interface {
	Post(fn func())
}

type RequestState int

const (
	RequestPending RequestState = iota
	RequestResolved
	RequestFailed
)

func (s RequestState) String() string {
	switch s {
	case RequestPending:
		return "pending"
	case RequestResolved:
		return "resolved"
	case RequestFailed:
		return "failed"
	}
	return "unknown"
}

// AssetRequest is one call to Request. Requesting a locator twice yields two
// independent requests and two table entries.
type AssetRequest struct {
	ID      uuid.UUID
	Kind    Kind
	Locator string

	mu    sync.Mutex
	state RequestState
	name  string
	err   error
}

func (r *AssetRequest) State() RequestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Name is the table key the asset resolved under, empty until resolved.
func (r *AssetRequest) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

func (r *AssetRequest) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

type CoordinatorOption func(*Coordinator)

// WithEventBus mirrors the loading hooks as EVENT_CODE_LOAD_* events.
func WithEventBus(bus *core.EventBus) CoordinatorOption {
	return func(c *Coordinator) {
		c.events = bus
	}
}

// WithTable makes the coordinator fill t instead of a fresh table.
func WithTable(t *Table) CoordinatorOption {
	return func(c *Coordinator) {
		c.table = t
	}
}

// WithCallbackQueue makes resolutions, progress hooks and the completion
// callback run wherever q is drained. The default runs them on a goroutine
// owned by the coordinator.
func WithCallbackQueue(q CallbackQueue) CoordinatorOption {
	return func(c *Coordinator) {
		c.queue = q
	}
}

// Coordinator issues asset fetches, stores resolved assets in its Table and
// invokes the completion callback when every requested asset has resolved.
//
// Fetches run concurrently on the dispatcher. A finished fetch only posts its
// resolution to the callback queue, so table writes, progress updates and the
// completion callback never overlap and never run on a fetch worker.
// A failed fetch is logged and never counted as loaded, so the batch it
// belongs to does not complete.
type Coordinator struct {
	dispatcher Dispatcher
	presenter  Presenter
	manager    *LoadingManager
	table      *Table
	events     *core.EventBus
	queue      CallbackQueue

	mu       sync.Mutex
	loaders  map[Kind]Loader
	requests []*AssetRequest
	onLoad   func(*Table)
	pending  int
	idle     chan struct{}
}

func NewCoordinator(dispatcher Dispatcher, presenter Presenter, opts ...CoordinatorOption) *Coordinator {
	idle := make(chan struct{})
	close(idle)

	c := &Coordinator{
		dispatcher: dispatcher,
		presenter:  presenter,
		manager:    NewLoadingManager(),
		loaders:    make(map[Kind]Loader),
		idle:       idle,
	}
	for _, o := range opts {
		o(c)
	}
	if c.table == nil {
		c.table = NewTable()
	}
	if c.queue == nil {
		c.queue = &serialQueue{}
	}

	c.manager.OnStart = c.onStart
	c.manager.OnProgress = c.onProgress
	c.manager.OnLoad = c.onComplete
	c.manager.OnError = c.onError

	return c
}

// RegisterLoader sets the loader used for kind, replacing any previous one.
func (c *Coordinator) RegisterLoader(kind Kind, loader Loader) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownAssetKind, kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaders[kind] = loader
	return nil
}

// SetOnLoad registers the callback invoked once per completed batch.
func (c *Coordinator) SetOnLoad(fn func(*Table)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLoad = fn
}

// Request enqueues a fetch of locator under kind.
func (c *Coordinator) Request(kind Kind, locator string) (*AssetRequest, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownAssetKind, kind)
	}

	c.mu.Lock()
	loader, ok := c.loaders[kind]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", core.ErrNoFetcher, kind)
	}
	req := &AssetRequest{
		ID:      uuid.New(),
		Kind:    kind,
		Locator: locator,
	}
	c.requests = append(c.requests, req)
	c.track()
	c.mu.Unlock()

	c.manager.ItemStart(locator)

	var asset interface{}
	task := systems.JobTask{
		Name: fmt.Sprintf("load %s %s", kind, locator),
		OnStart: func(ctx context.Context) error {
			a, err := loader.Load(ctx, locator)
			if err != nil {
				return err
			}
			asset = a
			return nil
		},
		OnComplete: func() { c.queue.Post(func() { c.resolve(req, asset) }) },
		OnFailure:  func(err error) { c.queue.Post(func() { c.fail(req, err) }) },
	}
	if err := c.dispatcher.Submit(task); err != nil {
		c.queue.Post(func() { c.fail(req, err) })
	}
	return req, nil
}

// Begin holds the current batch open until the matching Commit. Requests
// issued in between belong to one batch however fast each of them resolves.
func (c *Coordinator) Begin() {
	c.mu.Lock()
	c.track()
	c.mu.Unlock()
	c.manager.Hold()
}

// Commit releases a Begin. The batch completes, on the callback queue, once
// every request it holds has resolved.
func (c *Coordinator) Commit() {
	c.queue.Post(func() {
		c.manager.Release()
		c.untrack()
	})
}

// track counts one more outstanding item for Wait. c.mu must be held.
func (c *Coordinator) track() {
	if c.pending == 0 {
		c.idle = make(chan struct{})
	}
	c.pending++
}

func (c *Coordinator) untrack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == 0 {
		return
	}
	c.pending--
	if c.pending == 0 {
		close(c.idle)
	}
}

// RequestAuto picks the kind from the locator's extension.
func (c *Coordinator) RequestAuto(locator string) (*AssetRequest, error) {
	kind, err := KindForExtension(locator)
	if err != nil {
		return nil, err
	}
	return c.Request(kind, locator)
}

func (c *Coordinator) Texture(locator string) (*AssetRequest, error) {
	return c.Request(KindTexture, locator)
}

func (c *Coordinator) Font(locator string) (*AssetRequest, error) {
	return c.Request(KindFont, locator)
}

func (c *Coordinator) Audio(locator string) (*AssetRequest, error) {
	return c.Request(KindAudio, locator)
}

func (c *Coordinator) Model(locator string) (*AssetRequest, error) {
	return c.Request(KindModel, locator)
}

func (c *Coordinator) resolve(req *AssetRequest, asset interface{}) {
	name := c.table.Insert(req.Kind, NameFromPath(req.Locator), asset)
	req.mu.Lock()
	req.state = RequestResolved
	req.name = name
	req.mu.Unlock()
	core.LogDebug("%s %q resolved as %q", req.Kind, req.Locator, name)

	c.manager.ItemEnd(req.Locator)
	c.untrack()
}

func (c *Coordinator) fail(req *AssetRequest, err error) {
	req.mu.Lock()
	req.state = RequestFailed
	req.err = err
	req.mu.Unlock()
	core.LogError("%s %q: %s", req.Kind, req.Locator, err)

	c.manager.ItemError(req.Locator)
}

func (c *Coordinator) onStart(url string, itemsLoaded, itemsTotal int) {
	if !c.presenter.Visible() {
		c.presenter.FadeIn()
	}
	c.presenter.SetText(StartText)
	c.fire(core.EVENT_CODE_LOAD_START, url, itemsLoaded, itemsTotal)
}

func (c *Coordinator) onProgress(url string, itemsLoaded, itemsTotal int) {
	c.presenter.SetText(FormatProgress(itemsLoaded, itemsTotal))
	c.fire(core.EVENT_CODE_LOAD_PROGRESS, url, itemsLoaded, itemsTotal)
}

func (c *Coordinator) onComplete() {
	c.presenter.SetText(CompletionText)
	c.presenter.FadeOut()

	c.mu.Lock()
	onLoad := c.onLoad
	c.mu.Unlock()
	if onLoad != nil {
		onLoad(c.table)
	}

	loaded, total := c.manager.Progress()
	core.LogWarn("Assets Loaded...")
	for _, k := range Kinds {
		if n := c.table.Len(k); n > 0 {
			core.LogDebug("%s: %v", k, c.table.Names(k))
		}
	}
	c.fire(core.EVENT_CODE_LOAD_COMPLETE, "", loaded, total)
}

func (c *Coordinator) onError(url string) {
	core.LogError("There was an error loading %s", url)
	loaded, total := c.manager.Progress()
	c.fire(core.EVENT_CODE_LOAD_ERROR, url, loaded, total)
}

func (c *Coordinator) fire(code core.SystemEventCode, url string, itemsLoaded, itemsTotal int) {
	if c.events == nil {
		return
	}
	c.events.Fire(core.EventContext{
		Type: code,
		Data: &core.LoadEvent{Locator: url, ItemsLoaded: itemsLoaded, ItemsTotal: itemsTotal},
	})
}

// Wait blocks until no requested asset is outstanding and every Begin was
// committed. A failed request keeps its batch outstanding, so callers should
// bound the wait with ctx. Wait must not be called from the callback queue.
func (c *Coordinator) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload fetches req again and swaps the stored asset in place, keeping its name.
func (c *Coordinator) Reload(ctx context.Context, req *AssetRequest) error {
	name := req.Name()
	if req.State() != RequestResolved || name == "" {
		return fmt.Errorf("cannot reload %s %q in state %s", req.Kind, req.Locator, req.State())
	}

	c.mu.Lock()
	loader, ok := c.loaders[req.Kind]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrNoFetcher, req.Kind)
	}

	asset, err := loader.Load(ctx, req.Locator)
	if err != nil {
		return err
	}

	old, ok := c.table.Replace(req.Kind, name, asset)
	if ok && old != nil {
		if err := loader.Unload(old); err != nil {
			core.LogWarn("unloading previous %s %q: %s", req.Kind, name, err)
		}
	}
	core.LogInfo("%s %q reloaded from %s", req.Kind, name, req.Locator)
	return nil
}

// Dispose unloads every resolved asset through its loader.
func (c *Coordinator) Dispose() {
	for _, req := range c.Requests() {
		if req.State() != RequestResolved {
			continue
		}
		c.mu.Lock()
		loader, ok := c.loaders[req.Kind]
		c.mu.Unlock()
		if !ok {
			continue
		}
		if a, ok := c.table.Get(req.Kind, req.Name()); ok {
			if err := loader.Unload(a); err != nil {
				core.LogWarn("unloading %s %q: %s", req.Kind, req.Name(), err)
			}
		}
	}
}

func (c *Coordinator) Table() *Table {
	return c.table
}

func (c *Coordinator) Manager() *LoadingManager {
	return c.manager
}

// Requests returns every request issued so far, in request order.
func (c *Coordinator) Requests() []*AssetRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*AssetRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// FormatProgress renders itemsLoaded/itemsTotal as a ratio with one decimal
// and a "%" suffix: 1 of 4 is "0.3%". The ratio is not scaled to 0-100.
// Exact ties round up.
func FormatProgress(itemsLoaded, itemsTotal int) string {
	if itemsTotal <= 0 {
		return StartText
	}
	x := float64(itemsLoaded) / float64(itemsTotal)
	tenths := x * 10
	if q := x * 4; q == math.Trunc(q) && tenths-math.Floor(tenths) == 0.5 {
		x = (math.Floor(tenths) + 1) / 10
	}
	return strconv.FormatFloat(x, 'f', 1, 64) + "%"
}

// serialQueue runs posted callbacks in order on one goroutine at a time,
// started on demand and gone once the queue is empty.
type serialQueue struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

func (q *serialQueue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	go q.run()
}

func (q *serialQueue) run() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.call(fn)
	}
}

func (q *serialQueue) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			core.LogError("asset callback panicked: %v", r)
		}
	}()
	fn()
}
