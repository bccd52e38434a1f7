package messenger

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Conversation is the bot-facing side of the webhook: everything the
// server needs to route an incoming event.
type Conversation interface {
	HandleText(ownerID, text string) error
	HandleOption(ownerID, optionID string) error
	HandlePhoto(ctx context.Context, ownerID string, image []byte, contentType string) error
}

// AttachmentFetcher downloads attachment payloads referenced by webhook
// events.
type AttachmentFetcher interface {
	FetchAttachment(url string) ([]byte, string, error)
}

// Server handles Messenger webhook HTTP requests.
type Server struct {
	conversation Conversation
	attachments  AttachmentFetcher
	verifyToken  string
	appSecret    string
	mux          *http.ServeMux
}

// NewServer creates a new Server with a default mux.
func NewServer(conversation Conversation, attachments AttachmentFetcher, verifyToken, appSecret string) *Server {
	return NewServerWithMux(conversation, attachments, verifyToken, appSecret, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing.
func NewServerWithMux(conversation Conversation, attachments AttachmentFetcher, verifyToken, appSecret string, mux *http.ServeMux) *Server {
	s := &Server{
		conversation: conversation,
		attachments:  attachments,
		verifyToken:  verifyToken,
		appSecret:    appSecret,
		mux:          mux,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /webhook", s.handleVerify)
	s.mux.HandleFunc("POST /webhook", s.handleEvent)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.mux)
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleVerify answers the subscription handshake Messenger performs
// when the webhook is registered.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode != "subscribe" || subtle.ConstantTimeCompare([]byte(token), []byte(s.verifyToken)) != 1 {
		slog.Warn("Webhook verification failed", "mode", mode)
		http.Error(w, "Verification failed", http.StatusForbidden)
		return
	}

	slog.Info("Webhook verified")
	io.WriteString(w, challenge)
}

// verifySignature checks the X-Hub-Signature-256 header against the raw
// request body. An empty app secret disables the check for local runs.
func (s *Server) verifySignature(body []byte, header string) bool {
	if s.appSecret == "" {
		return true
	}

	expected, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.appSecret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(computed), []byte(expected))
}

type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []messagingEvent `json:"messaging"`
	} `json:"entry"`
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message *struct {
		Text       string `json:"text"`
		QuickReply *struct {
			Payload string `json:"payload"`
		} `json:"quick_reply"`
		Attachments []struct {
			Type    string `json:"type"`
			Payload struct {
				URL string `json:"url"`
			} `json:"payload"`
		} `json:"attachments"`
	} `json:"message"`
	Postback *struct {
		Payload string `json:"payload"`
	} `json:"postback"`
}

// handleEvent processes a webhook delivery. Messenger retries on
// non-200 responses, so per-message failures are logged rather than
// surfaced.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Error reading body", http.StatusBadRequest)
		return
	}

	if !s.verifySignature(body, r.Header.Get("X-Hub-Signature-256")) {
		slog.Warn("Invalid webhook signature")
		http.Error(w, "Invalid signature", http.StatusForbidden)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if event.Object == "page" {
		for _, entry := range event.Entry {
			for _, msg := range entry.Messaging {
				s.dispatch(r.Context(), msg)
			}
		}
	}

	io.WriteString(w, "OK")
}

// dispatch routes one messaging event to the conversation. Quick reply
// payloads win over text since Messenger sends both.
func (s *Server) dispatch(ctx context.Context, msg messagingEvent) {
	ownerID := msg.Sender.ID
	if ownerID == "" {
		return
	}

	if msg.Postback != nil {
		if err := s.conversation.HandleOption(ownerID, msg.Postback.Payload); err != nil {
			slog.Error("Error handling postback", "owner", ownerID, "error", err)
		}
		return
	}
	if msg.Message == nil {
		return
	}

	if msg.Message.QuickReply != nil {
		if err := s.conversation.HandleOption(ownerID, msg.Message.QuickReply.Payload); err != nil {
			slog.Error("Error handling option", "owner", ownerID, "error", err)
		}
		return
	}

	for _, att := range msg.Message.Attachments {
		if att.Type != "image" && att.Type != "file" {
			continue
		}
		s.handleAttachment(ctx, ownerID, att.Payload.URL)
	}

	if text := strings.TrimSpace(msg.Message.Text); text != "" {
		if err := s.conversation.HandleText(ownerID, text); err != nil {
			slog.Error("Error handling text", "owner", ownerID, "error", err)
		}
	}
}

func (s *Server) handleAttachment(ctx context.Context, ownerID, url string) {
	if url == "" {
		return
	}

	data, contentType, err := s.attachments.FetchAttachment(url)
	if err != nil {
		slog.Error("Error fetching attachment", "owner", ownerID, "error", err)
		return
	}
	if err := s.conversation.HandlePhoto(ctx, ownerID, data, contentType); err != nil {
		slog.Error("Error handling photo", "owner", ownerID, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
