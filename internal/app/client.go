package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies a failed exchange with the chat backend.
type ErrorKind int

const (
	// ErrTransport covers everything below HTTP: unreachable host, DNS,
	// TLS, timeouts.
	ErrTransport ErrorKind = iota
	// ErrServer is a non-2xx response, with or without a parseable body.
	ErrServer
	// ErrCancelled is a user abort. It is not surfaced as an error turn.
	ErrCancelled
)

// RequestError is the settled failure of one exchange.
type RequestError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// IsCancelled reports whether err settled as a user abort.
func IsCancelled(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind == ErrCancelled
	}
	return errors.Is(err, context.Canceled)
}

const defaultRequestTimeout = 120 * time.Second

// ChatClient talks to the /chat backend. It is stateless; the controller
// owns the one-request-at-a-time discipline.
type ChatClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewChatClient(baseURL string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &ChatClient{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	History  []Message    `json:"history"`
	Message  string       `json:"message"`
	Files    []FilePart   `json:"files"`
	Settings chatSettings `json:"settings"`
}

// chatSettings is the wire subset of Settings; dark theme never leaves the
// client.
type chatSettings struct {
	Model             string `json:"model"`
	SystemInstruction string `json:"systemInstruction"`
	Grounding         bool   `json:"grounding"`
}

// Send posts one exchange: the prior history (excluding the message being
// sent), the raw message text, its attachments, and the active settings.
// Context cancellation settles as ErrCancelled, not as a failure.
func (c *ChatClient) Send(ctx context.Context, history []Message, message string, files []FilePart, settings Settings) (*ChatResponse, error) {
	if c.BaseURL == "" {
		return nil, &RequestError{Kind: ErrTransport, Message: "backend URL not configured"}
	}

	if history == nil {
		history = []Message{}
	}
	if files == nil {
		files = []FilePart{}
	}
	payload, err := json.Marshal(chatRequest{
		History: history,
		Message: message,
		Files:   files,
		Settings: chatSettings{
			Model:             settings.Model,
			SystemInstruction: settings.SystemInstruction,
			Grounding:         settings.Grounding,
		},
	})
	if err != nil {
		return nil, &RequestError{Kind: ErrTransport, Message: fmt.Sprintf("encode request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{Kind: ErrTransport, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
			return nil, &RequestError{Kind: ErrCancelled, Message: "request cancelled"}
		}
		return nil, &RequestError{Kind: ErrTransport, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
			return nil, &RequestError{Kind: ErrCancelled, Message: "request cancelled"}
		}
		return nil, &RequestError{Kind: ErrTransport, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Kind: ErrServer, Status: resp.StatusCode, Message: serverErrorMessage(resp.StatusCode, body)}
	}

	var out ChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &RequestError{Kind: ErrServer, Status: resp.StatusCode, Message: fmt.Sprintf("invalid response body: %v", err)}
	}
	return &out, nil
}

// serverErrorMessage prefers the backend's own {error} string, falling back
// to a generic message that at least embeds the status.
func serverErrorMessage(status int, body []byte) string {
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil && strings.TrimSpace(errBody.Error) != "" {
		return errBody.Error
	}
	return fmt.Sprintf("Error %d: Kesalahan tidak diketahui.", status)
}
