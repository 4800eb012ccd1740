package langgraph

// Message is a single chat message in a run's input.
type Message struct {
	// Type is the LangChain message role, "human" for user input.
	Type    string `json:"type"`
	Content string `json:"content"`
}

// RunInput is the graph input sent with a run.
type RunInput struct {
	Messages []Message `json:"messages"`
}

// RunRequest is the body of POST /runs/stream.
type RunRequest struct {
	AssistantID string   `json:"assistant_id"`
	Input       RunInput `json:"input"`
}

// NewRunRequest builds a request carrying a single human message.
func NewRunRequest(assistantID, text string) *RunRequest {
	return &RunRequest{
		AssistantID: assistantID,
		Input: RunInput{
			Messages: []Message{{Type: "human", Content: text}},
		},
	}
}
