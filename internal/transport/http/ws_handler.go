package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// WSHandler drives one quiz session per websocket connection: scope
// selection, question/answer/advance round-trips, the per-question
// countdown, and the terminal score submission.
type WSHandler struct {
	service         *app.QuizService
	questionSeconds int
	upgrader        websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, questionSeconds int) *WSHandler {
	if questionSeconds <= 0 {
		questionSeconds = 15
	}
	return &WSHandler{
		service:         service,
		questionSeconds: questionSeconds,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Mode          string `json:"mode"`
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subcategoryId"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type submitScorePayload struct {
	Name string `json:"name"`
}

type leaderboardPayload struct {
	Mode          string `json:"mode"`
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subcategoryId"`
}

type questionView struct {
	Index           int      `json:"index"`
	Total           int      `json:"total"`
	Prompt          string   `json:"prompt"`
	CategoryName    string   `json:"categoryName"`
	SubcategoryName string   `json:"subcategoryName"`
	Options         []string `json:"options"`
	Seconds         int      `json:"seconds"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

type finishedPayload struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

type submitStatusPayload struct {
	Status string `json:"status"`
}

type leaderboardView struct {
	Entries []domain.ScoreRecord `json:"entries"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// conn bundles the per-connection state the message handlers share.
type wsConn struct {
	clientID string
	send     chan outboundMessage[any]
	closed   chan struct{}

	mu        sync.Mutex
	countdown *app.Countdown
}

// push delivers a message unless the connection is shutting down.
func (c *wsConn) push(msg outboundMessage[any]) {
	select {
	case c.send <- msg:
	case <-c.closed:
	}
}

// swapCountdown stops the running countdown (if any) and installs the
// replacement. Called on every question transition so a stale tick can
// never reach a newer question.
func (c *wsConn) swapCountdown(next *app.Countdown) {
	c.mu.Lock()
	prev := c.countdown
	c.countdown = next
	c.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}
}

// ServeWS upgrades the request and runs the per-connection message loop.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		http.Error(w, "missing clientId", http.StatusBadRequest)
		return
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer sock.Close()

	c := &wsConn{
		clientID: clientID,
		send:     make(chan outboundMessage[any], 16),
		closed:   make(chan struct{}),
	}
	writerDone := make(chan struct{})

	// The send channel is never closed; the writer exits on the closed
	// signal so late pushes from the countdown or an in-flight score
	// submission can never hit a closed channel.
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-c.send:
				if err := sock.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-c.closed:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := sock.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r.Context(), c, inbound)
	}

	c.swapCountdown(nil)
	h.service.Leave(clientID)
	close(c.closed)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, c *wsConn, inbound inboundMessage) {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.push(errMsg("invalid start payload"))
			return
		}
		h.handleStart(ctx, c, payload)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.push(errMsg("invalid answer payload"))
			return
		}
		h.handleAnswer(ctx, c, payload.Option)
	case "advance":
		h.handleAdvance(ctx, c)
	case "submitScore":
		var payload submitScorePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.push(errMsg("invalid submitScore payload"))
			return
		}
		h.handleSubmitScore(c, payload.Name)
	case "leaderboard":
		var payload leaderboardPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.push(errMsg("invalid leaderboard payload"))
			return
		}
		h.handleLeaderboard(ctx, c, payload)
	case "quit":
		c.swapCountdown(nil)
		h.service.Leave(c.clientID)
	default:
		c.push(errMsg("unsupported message type"))
	}
}

func (h *WSHandler) handleStart(ctx context.Context, c *wsConn, payload startPayload) {
	c.swapCountdown(nil)

	session, err := h.service.Start(ctx, c.clientID, domain.Mode(payload.Mode), payload.CategoryID, payload.SubcategoryID)
	if errors.Is(err, domain.ErrNoQuestions) {
		c.push(outboundMessage[any]{Type: "noQuestions", Payload: struct{}{}})
		return
	}
	if err != nil {
		c.push(errMsg(err.Error()))
		return
	}
	h.presentQuestion(ctx, c, session)
}

func (h *WSHandler) handleAnswer(ctx context.Context, c *wsConn, option string) {
	c.swapCountdown(nil)

	fb, err := h.service.Submit(ctx, c.clientID, option)
	if errors.Is(err, domain.ErrAlreadyAnswered) {
		return // raced a timeout; the earlier feedback stands
	}
	if err != nil {
		c.push(errMsg(err.Error()))
		return
	}
	c.push(outboundMessage[any]{Type: "feedback", Payload: fb})
}

func (h *WSHandler) handleAdvance(ctx context.Context, c *wsConn) {
	c.swapCountdown(nil)

	phase, err := h.service.Advance(c.clientID)
	if err != nil {
		c.push(errMsg(err.Error()))
		return
	}

	session, err := h.service.Session(c.clientID)
	if err != nil {
		c.push(errMsg(err.Error()))
		return
	}
	if phase == app.PhaseFinished {
		score, total := session.Score()
		c.push(outboundMessage[any]{Type: "finished", Payload: finishedPayload{Score: score, Total: total}})
		return
	}
	h.presentQuestion(ctx, c, session)
}

// handleSubmitScore persists the score asynchronously; the session stays
// untouched so the client can retry by resending on failure.
func (h *WSHandler) handleSubmitScore(c *wsConn, name string) {
	c.push(outboundMessage[any]{Type: "submitStatus", Payload: submitStatusPayload{Status: "submitting"}})

	go func() {
		_, err := h.service.SubmitScore(context.Background(), c.clientID, name)
		if err != nil {
			log.Printf("score submission failed: %v", err)
			c.push(outboundMessage[any]{Type: "submitStatus", Payload: submitStatusPayload{Status: "error"}})
			return
		}
		c.push(outboundMessage[any]{Type: "submitStatus", Payload: submitStatusPayload{Status: "success"}})
	}()
}

func (h *WSHandler) handleLeaderboard(ctx context.Context, c *wsConn, payload leaderboardPayload) {
	entries, err := h.service.Leaderboard(ctx, domain.ScoreFilter{
		Mode:          domain.Mode(payload.Mode),
		CategoryID:    payload.CategoryID,
		SubcategoryID: payload.SubcategoryID,
	})
	if err != nil {
		c.push(errMsg(err.Error()))
		return
	}
	c.push(outboundMessage[any]{Type: "leaderboard", Payload: leaderboardView{Entries: entries}})
}

// presentQuestion sends the current question and arms its countdown.
func (h *WSHandler) presentQuestion(ctx context.Context, c *wsConn, session *app.QuizSession) {
	question, options, index, total := session.Current()

	texts := make([]string, len(options))
	for i, o := range options {
		texts[i] = o.Text
	}
	c.push(outboundMessage[any]{Type: "question", Payload: questionView{
		Index:           index,
		Total:           total,
		Prompt:          question.Text,
		CategoryName:    question.CategoryName,
		SubcategoryName: question.SubcategoryName,
		Options:         texts,
		Seconds:         h.questionSeconds,
	}})

	countdown := app.StartCountdown(h.questionSeconds,
		func(remaining int) {
			c.push(outboundMessage[any]{Type: "tick", Payload: tickPayload{Remaining: remaining}})
		},
		func() {
			fb, err := h.service.Timeout(ctx, c.clientID)
			if err != nil {
				// Already answered or session gone; either way nothing to report.
				return
			}
			c.push(outboundMessage[any]{Type: "feedback", Payload: fb})
		})
	c.swapCountdown(countdown)
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
