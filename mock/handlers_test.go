package mock

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tabagent/pkg/agentstream"
	"github.com/papercomputeco/tabagent/pkg/langgraph"
)

func runBody(assistantID, text string) io.Reader {
	body, err := json.Marshal(langgraph.NewRunRequest(assistantID, text))
	Expect(err).NotTo(HaveOccurred())
	return strings.NewReader(string(body))
}

var _ = Describe("Mock agent server", func() {
	var server *Server

	BeforeEach(func() {
		server = NewServer(Config{ListenAddr: ":0"}, nil)
	})

	Describe("GET /ok", func() {
		It("reports healthy", func() {
			resp, err := server.app.Test(httptest.NewRequest("GET", "/ok", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(200))
		})
	})

	Describe("POST /runs/stream", func() {
		post := func(body io.Reader) (int, string) {
			req := httptest.NewRequest("POST", "/runs/stream", body)
			req.Header.Set("Content-Type", "application/json")
			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			return resp.StatusCode, string(data)
		}

		It("streams the echo reply as ai deltas", func() {
			status, body := post(runBody("graph-1", "top regions"))
			Expect(status).To(Equal(200))
			Expect(body).To(HavePrefix("event: metadata\n"))
			Expect(body).To(HaveSuffix("event: end\n\n"))

			acc := agentstream.NewAccumulator()
			_, err := agentstream.Consume(context.Background(), strings.NewReader(body), acc)
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.Text()).To(Equal("You asked: top regions"))
			Expect(acc.Errors()).To(BeEmpty())
		})

		It("injects one malformed record when configured", func() {
			server = NewServer(Config{InjectMalformed: true, ChunkSize: 5}, nil)
			_, body := post(runBody("graph-1", "a b c"))

			acc := agentstream.NewAccumulator()
			stats, err := agentstream.Consume(context.Background(), strings.NewReader(body), acc)
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.Text()).To(Equal("You asked: a b c"))
			Expect(stats.Malformed).To(Equal(1))

			var malformed *agentstream.MalformedRecordError
			Expect(acc.Errors()).To(HaveLen(1))
			Expect(errors.As(acc.Errors()[0], &malformed)).To(BeTrue())
		})

		DescribeTable("rejects invalid requests",
			func(body string, detail string) {
				status, resp := post(strings.NewReader(body))
				Expect(status).To(Equal(422))
				Expect(resp).To(ContainSubstring(detail))
			},
			Entry("invalid JSON", "{", "invalid JSON body"),
			Entry("no assistant", `{"input":{"messages":[{"type":"human","content":"hi"}]}}`, "assistant_id is required"),
			Entry("no human message", `{"assistant_id":"g","input":{"messages":[{"type":"ai","content":"hi"}]}}`, "human message"),
			Entry("blank human message", `{"assistant_id":"g","input":{"messages":[{"type":"human","content":"  "}]}}`, "human message"),
		)
	})

	Describe("split", func() {
		It("cuts strings into fixed size pieces", func() {
			Expect(split("abcdefg", 3)).To(Equal([]string{"abc", "def", "g"}))
			Expect(split("abc", 0)).To(Equal([]string{"abc"}))
			Expect(split("abc", 3)).To(Equal([]string{"abc"}))
		})
	})

	Describe("over a real connection", func() {
		It("streams byte-sliced events the client decodes intact", func() {
			server = NewServer(Config{ChunkSize: 3}, nil)
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			go func() { _ = server.Serve(ln) }()
			DeferCleanup(server.Shutdown)

			client, err := langgraph.NewClient(langgraph.Config{Target: "http://" + ln.Addr().String()})
			Expect(err).NotTo(HaveOccurred())

			body, err := client.StreamRun(context.Background(), langgraph.NewRunRequest("graph-1", "café 🙂 naïve"))
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			acc := agentstream.NewAccumulator()
			stats, err := agentstream.Consume(context.Background(), body, acc)
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.Text()).To(Equal("You asked: café 🙂 naïve"))
			Expect(stats.Deltas).To(Equal(5))
		})
	})
})
