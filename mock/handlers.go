package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/pkg/langgraph"
)

// ErrorResponse mirrors the agent server's validation error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// malformedRecord is what InjectMalformed emits.
const malformedRecord = "event: values\ndata: {\"messages\": [\n\n"

// Reply is the canned answer the mock gives to query.
func Reply(query string) string {
	return "You asked: " + query
}

// handleOK returns a simple health check response.
func (s *Server) handleOK(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// handleRunStream validates a run request and streams an echo reply, one
// word per "values" event.
func (s *Server) handleRunStream(c *fiber.Ctx) error {
	var req langgraph.RunRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Detail: "invalid JSON body"})
	}

	if req.AssistantID == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Detail: "assistant_id is required"})
	}

	human, ok := lastHuman(req.Input.Messages)
	if !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Detail: "input must contain a human message"})
	}

	events, err := s.buildEvents(human)
	if err != nil {
		s.logger.Error("failed to build mock events", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Detail: "internal error"})
	}

	s.logger.Debug("streaming mock run",
		zap.String("assistant_id", req.AssistantID),
		zap.Int("events", len(events)),
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// Each pipe write reaches the socket as it happens, so clients see
	// the events arrive one by one.
	pr, pw := io.Pipe()
	go s.writeEvents(pw, events)
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// buildEvents renders the full SSE byte sequence for a reply to human, one
// element per event.
func (s *Server) buildEvents(human langgraph.Message) ([]string, error) {
	meta, err := json.Marshal(map[string]string{"run_id": uuid.NewString()})
	if err != nil {
		return nil, err
	}

	events := []string{fmt.Sprintf("event: metadata\ndata: %s\n\n", meta)}

	for i, word := range strings.SplitAfter(Reply(human.Content), " ") {
		payload, err := json.Marshal(langgraph.RunInput{
			Messages: []langgraph.Message{
				human,
				{Type: "ai", Content: word},
			},
		})
		if err != nil {
			return nil, err
		}
		events = append(events, fmt.Sprintf("event: values\ndata: %s\n\n", payload))

		if i == 0 && s.config.InjectMalformed {
			events = append(events, malformedRecord)
		}
	}

	return append(events, "event: end\n\n"), nil
}

func (s *Server) writeEvents(pw *io.PipeWriter, events []string) {
	defer pw.Close()

	for i, event := range events {
		if i > 0 && s.config.Delay > 0 {
			time.Sleep(s.config.Delay)
		}

		for _, chunk := range split(event, s.config.ChunkSize) {
			if _, err := io.WriteString(pw, chunk); err != nil {
				s.logger.Debug("client went away", zap.Error(err))
				return
			}
		}
	}
}

// split cuts s into pieces of at most n bytes, ignoring rune boundaries.
func split(s string, n int) []string {
	if n <= 0 || len(s) <= n {
		return []string{s}
	}

	chunks := make([]string, 0, len(s)/n+1)
	for len(s) > n {
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return append(chunks, s)
}

// lastHuman returns the most recent non-empty human message.
func lastHuman(msgs []langgraph.Message) (langgraph.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == "human" && strings.TrimSpace(msgs[i].Content) != "" {
			return msgs[i], true
		}
	}
	return langgraph.Message{}, false
}
