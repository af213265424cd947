package app

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// State is the controller's position in the session lifecycle.
type State int

const (
	// StateEmpty: no session, empty history.
	StateEmpty State = iota
	// StateComposing: history may be non-empty, no request in flight.
	StateComposing
	// StateAwaiting: exactly one request in flight.
	StateAwaiting
)

// errorTurnPrefix fronts the synthetic model message appended for a failed
// exchange.
const errorTurnPrefix = "Aww, maaf, Elaina error nih: "

// Controller owns the in-memory active history and coordinates the store,
// the attachment buffer and the chat client. All mutation funnels through
// its methods; the deployment model is a single UI loop, but the controller
// is mutex-guarded so the engine also holds up under the race detector.
type Controller struct {
	mu sync.Mutex

	store       SessionStore
	client      *ChatClient
	logger      *Logger
	attachments *AttachmentBuffer

	state    State
	activeID string
	title    string
	history  []Message

	pending *Exchange
}

// Exchange is one bound network attempt: a request snapshot plus the
// cancellation token that ties its settlement back to the controller.
// Running it happens off the UI loop; settling it goes through Resolve.
type Exchange struct {
	token  uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc

	client   *ChatClient
	history  []Message
	message  string
	files    []FilePart
	settings Settings
}

// Do performs the network exchange. Safe to call from any goroutine.
func (e *Exchange) Do() (*ChatResponse, error) {
	return e.client.Send(e.ctx, e.history, e.message, e.files, e.settings)
}

func NewController(store SessionStore, client *ChatClient, logger *Logger) *Controller {
	if logger == nil {
		logger = NewLogger(nil)
	}
	return &Controller{
		store:       store,
		client:      client,
		logger:      logger,
		attachments: NewAttachmentBuffer(nil),
		state:       StateEmpty,
	}
}

func (c *Controller) Attachments() *AttachmentBuffer {
	return c.attachments
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// History returns a copy of the active history.
func (c *Controller) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Controller) Settings() Settings {
	return c.store.LoadSettings()
}

func (c *Controller) SaveSettings(s Settings) {
	if err := c.store.SaveSettings(s); err != nil {
		c.logger.Error("save settings failed", map[string]interface{}{"error": err.Error()})
	}
}

// Sessions lists the persisted sessions, most recent first.
func (c *Controller) Sessions() []Session {
	return c.store.ListSessions()
}

// StartNewSession clears the active id, history and pending attachments.
// Persisted sessions are untouched; the next Submit allocates a fresh id.
func (c *Controller) StartNewSession() {
	c.mu.Lock()
	c.activeID = ""
	c.title = ""
	c.history = nil
	c.pending = nil
	c.state = StateEmpty
	c.mu.Unlock()

	c.attachments.Clear()
	if err := c.store.SetLastActiveID(""); err != nil {
		c.logger.Error("clear active session pointer failed", map[string]interface{}{"error": err.Error()})
	}
}

// LoadSession replaces the active history with a stored session. Unknown
// ids are a silent no-op. Any in-flight request state is dropped without an
// explicit cancel; a settlement that arrives later no longer matches the
// current token and is discarded.
func (c *Controller) LoadSession(id string) bool {
	sess, ok := c.store.GetSession(id)
	if !ok {
		return false
	}

	c.mu.Lock()
	c.activeID = sess.ID
	c.title = sess.Title
	c.history = make([]Message, len(sess.Messages))
	copy(c.history, sess.Messages)
	c.pending = nil
	c.state = StateComposing
	c.mu.Unlock()
	return true
}

// RestoreLastSession loads the session recorded on last teardown, if any.
func (c *Controller) RestoreLastSession() bool {
	id := c.store.LastActiveID()
	if id == "" {
		return false
	}
	return c.LoadSession(id)
}

// SaveActivePointer records the active session for the next launch. Called
// on application teardown.
func (c *Controller) SaveActivePointer() {
	c.mu.Lock()
	id := c.activeID
	c.mu.Unlock()
	if id == "" {
		return
	}
	if err := c.store.SetLastActiveID(id); err != nil {
		c.logger.Error("save active session pointer failed", map[string]interface{}{"error": err.Error()})
	}
}

// Submit appends a user message built from the typed text and the pending
// attachments (text part first), allocates a session id when composing the
// first message of a new conversation, persists, and hands back the bound
// exchange to run off-loop. A submit with no text and no attachments is a
// no-op and returns a nil exchange.
//
// The returned user message is the appended turn, for immediate rendering.
func (c *Controller) Submit(text string) (*Exchange, *Message) {
	text = strings.TrimSpace(text)
	if text == "" && c.attachments.Len() == 0 {
		return nil, nil
	}
	files := c.attachments.Take()

	c.mu.Lock()
	defer c.mu.Unlock()

	userMsg := NewUserMessage(text, files)

	// Snapshot before the append: the backend receives the history
	// excluding the message being sent.
	snapshot := make([]Message, len(c.history))
	copy(snapshot, c.history)

	c.history = append(c.history, userMsg)
	if c.activeID == "" {
		c.activeID = strconv.FormatInt(nowMillis(), 10)
	}
	c.persistLocked()

	settings := c.store.LoadSettings()
	ctx, cancel := context.WithCancel(context.Background())
	ex := &Exchange{
		token:    uuid.New(),
		ctx:      ctx,
		cancel:   cancel,
		client:   c.client,
		history:  snapshot,
		message:  text,
		files:    files,
		settings: settings,
	}
	// A new send supersedes whatever token was current; a stale settlement
	// will no longer match and gets discarded in Resolve.
	c.pending = ex
	c.state = StateAwaiting

	appended := userMsg
	return ex, &appended
}

// CancelPending aborts the outstanding exchange, if any. The abort is
// advisory: nothing already committed is rolled back, and the settlement
// arriving later is swallowed as cancelled rather than surfaced.
func (c *Controller) CancelPending() {
	c.mu.Lock()
	ex := c.pending
	c.mu.Unlock()
	if ex != nil {
		ex.cancel()
	}
}

// Resolve settles an exchange. Settlements whose token no longer matches
// the current pending exchange are stale (a cancel raced completion, or a
// newer send superseded them) and are discarded without touching history.
//
// On success the model turn is appended and returned with its grounding
// metadata; on failure a synthetic model turn carrying the error text is
// appended; on cancellation nothing is appended. All paths leave the
// controller in Composing.
func (c *Controller) Resolve(ex *Exchange, resp *ChatResponse, err error) (*Message, *GroundingMetadata) {
	if ex == nil {
		return nil, nil
	}
	ex.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil || c.pending.token != ex.token {
		return nil, nil
	}
	c.pending = nil
	c.state = StateComposing

	if err != nil {
		if IsCancelled(err) {
			return nil, nil
		}
		c.logger.Error("chat request failed", map[string]interface{}{"error": err.Error()})
		errMsg := NewModelMessage(errorTurnPrefix + err.Error())
		c.history = append(c.history, errMsg)
		c.persistLocked()
		appended := errMsg
		return &appended, nil
	}

	modelMsg := NewModelMessage(resp.Text)
	c.history = append(c.history, modelMsg)
	c.persistLocked()
	appended := modelMsg
	return &appended, resp.GroundingMetadata
}

// persistLocked writes the active session through the store. The title is
// derived exactly once, at the first persist of a new session, and kept
// from then on. Persistence failures degrade to in-memory only.
func (c *Controller) persistLocked() {
	if c.activeID == "" || len(c.history) == 0 {
		return
	}
	if c.title == "" {
		c.title = DeriveTitle(c.history)
	}
	sess := &Session{
		ID:       c.activeID,
		Title:    c.title,
		Messages: c.history,
	}
	if err := c.store.UpsertSession(sess); err != nil {
		c.logger.Error("persist session failed", map[string]interface{}{
			"session": c.activeID,
			"error":   err.Error(),
		})
	}
}
