package stubserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/muurk/emailreply/internal/form"
	"github.com/muurk/emailreply/internal/logging"
	"github.com/muurk/emailreply/internal/replyapi"
)

// maxRequestSize bounds the accepted request body
const maxRequestSize = 1 << 20

// Messages returned as plain-text error bodies
const (
	MsgContentRequired = "Email content required"
	MsgInvalidTone     = "Invalid tone"
	MsgInvalidBody     = "Invalid request body"
)

// handleGenerate serves POST {Path}
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	if s.config.Latency > 0 {
		select {
		case <-time.After(s.config.Latency):
		case <-r.Context().Done():
			return
		}
	}

	if s.config.FailStatus != 0 {
		writeText(w, s.config.FailStatus, s.config.FailMessage)
		return
	}

	var req replyapi.GenerateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}
	if strings.TrimSpace(req.EmailContent) == "" {
		writeText(w, http.StatusBadRequest, MsgContentRequired)
		return
	}
	tone, err := form.ParseTone(req.Tone)
	if err != nil {
		writeText(w, http.StatusBadRequest, MsgInvalidTone)
		return
	}

	writeText(w, http.StatusOK, ComposeReply(req.EmailContent, tone))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// requestLog logs each request with the ID from the chi RequestID
// middleware, which reuses the client's X-Request-ID when present
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logging.Info("Handled request",
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// greetings and sign-offs per tone
var (
	greetings = map[form.Tone]string{
		form.ToneFormal:       "Dear %s,",
		form.ToneProfessional: "Hello %s,",
		form.ToneCasual:       "Hey %s,",
		form.ToneFriendly:     "Hi %s!",
	}
	bodies = map[form.Tone]string{
		form.ToneFormal:       "Thank you for your correspondence regarding %q. I have reviewed it and will respond in full at the earliest opportunity.",
		form.ToneProfessional: "Thanks for your email about %q. I've noted the details and will follow up shortly.",
		form.ToneCasual:       "Thanks for the note about %q. I'll get back to you soon.",
		form.ToneFriendly:     "So good to hear from you about %q! I'll get back to you really soon.",
	}
	signOffs = map[form.Tone]string{
		form.ToneFormal:       "Yours sincerely,",
		form.ToneProfessional: "Best regards,",
		form.ToneCasual:       "Cheers,",
		form.ToneFriendly:     "Warmly,",
	}
)

// ComposeReply builds a canned reply for content in the given tone. The
// sender's name is taken from a trailing sign-off line when there is one.
func ComposeReply(content string, tone form.Tone) string {
	if !tone.Valid() {
		tone = form.DefaultTone
	}

	var b strings.Builder
	fmt.Fprintf(&b, greetings[tone], senderName(content))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, bodies[tone], subject(content))
	b.WriteString("\n\n")
	b.WriteString(signOffs[tone])
	return b.String()
}

// subject returns the first non-blank line, shortened
func subject(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > 60 {
			return string(r[:57]) + "..."
		}
		return line
	}
	return ""
}

// senderName guesses the sender from the last non-blank line when it is
// a single short word, otherwise "there"
func senderName(content string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return "there"
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	last = strings.Trim(last, "-, ")
	if last == "" || strings.ContainsAny(last, " .?!:") || len(last) > 20 {
		return "there"
	}
	return last
}
