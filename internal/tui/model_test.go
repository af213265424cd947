package tui

import (
	"io"
	"testing"
	"time"

	"github.com/G4NGGAA/Elaina-Ai/internal/app"
)

func newTestModel(t *testing.T) (*MainModel, *app.Controller) {
	t.Helper()
	store := app.NewFileSessionStore(t.TempDir())
	// The client is never dialed in these tests; settlements are fed to
	// Update directly.
	client := app.NewChatClient("http://127.0.0.1:0", time.Second)
	controller := app.NewController(store, client, app.NewLogger(io.Discard))
	return NewMainModel(controller), controller
}

func TestStaleSettlementKeepsSpinnerRunning(t *testing.T) {
	m, controller := newTestModel(t)

	ex1, _ := controller.Submit("pertama")
	m.running = true

	// A newer send supersedes the first exchange before it settles.
	ex2, _ := controller.Submit("kedua")

	m.Update(responseMsg{ex: ex1, resp: &app.ChatResponse{Text: "basi"}, err: nil})
	if !m.running {
		t.Fatal("stale settlement reopened the send path while a request is in flight")
	}
	if controller.State() != app.StateAwaiting {
		t.Fatalf("controller state is %v, want Awaiting", controller.State())
	}

	m.Update(responseMsg{ex: ex2, resp: &app.ChatResponse{Text: "jawaban"}, err: nil})
	if m.running {
		t.Fatal("live settlement did not stop the spinner")
	}
	if controller.State() != app.StateComposing {
		t.Fatalf("controller state is %v, want Composing", controller.State())
	}
}

func TestLiveSettlementStoresMetadata(t *testing.T) {
	m, controller := newTestModel(t)

	ex, _ := controller.Submit("hai")
	m.running = true

	meta := &app.GroundingMetadata{
		GroundingChunks: []app.GroundingChunk{{URI: "https://sumber"}},
		GroundingSupports: []app.GroundingSupport{
			{Segment: &app.GroundingSegment{EndIndex: 3}, GroundingChunkIndices: []int{0}},
		},
	}
	m.Update(responseMsg{ex: ex, resp: &app.ChatResponse{Text: "jawaban", GroundingMetadata: meta}, err: nil})

	history := controller.History()
	last := history[len(history)-1]
	if m.metaByID[last.ID] == nil {
		t.Fatal("grounding metadata not kept for the settled turn")
	}
}
