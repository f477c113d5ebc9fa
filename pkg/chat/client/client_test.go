package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/alexgoodison/dalia/pkg/chat"
	"github.com/alexgoodison/dalia/pkg/chat/client"
)

// sseRecord writes one data record followed by the blank-line separator.
func sseRecord(w http.ResponseWriter, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Send", func() {
		It("posts the message and decodes the response", func() {
			var gotReq chat.SendRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/chat"))
				Expect(json.NewDecoder(r.Body).Decode(&gotReq)).To(Succeed())

				_ = json.NewEncoder(w).Encode(chat.SendResponse{
					ConversationID: "c1",
					Messages: []chat.Message{
						chat.NewUserMessage("hi"),
						chat.NewAssistantMessage("hello!"),
					},
					LatestMessage: &chat.Message{Role: chat.RoleAssistant, Content: "hello!"},
				})
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			resp, err := c.Send(ctx, &chat.SendRequest{Message: "hi", ConversationID: "c1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(gotReq.Message).To(Equal("hi"))
			Expect(gotReq.ConversationID).To(Equal("c1"))
			Expect(resp.ConversationID).To(Equal("c1"))
			Expect(resp.Messages).To(HaveLen(2))
			Expect(resp.LatestMessage.Content).To(Equal("hello!"))
		})

		It("surfaces non-200 responses with the body snippet", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"agent exploded"}`, http.StatusBadGateway)
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			_, err := c.Send(ctx, &chat.SendRequest{Message: "hi"})
			Expect(err).To(MatchError(ContainSubstring("status 502")))
			Expect(err).To(MatchError(ContainSubstring("agent exploded")))
		})

		It("surfaces the backend's detail message on failures", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"detail":"model overloaded"}`, http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			_, err := c.Send(ctx, &chat.SendRequest{Message: "hi"})
			Expect(err).To(MatchError(ContainSubstring("status 503")))
			Expect(err).To(MatchError(ContainSubstring("model overloaded")))
			Expect(err).NotTo(MatchError(ContainSubstring("detail")))
		})

		It("fails when the backend is unreachable", func() {
			c := client.New("http://127.0.0.1:0")
			_, err := c.Send(ctx, &chat.SendRequest{Message: "hi"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Stream", func() {
		It("sets the event-stream accept header and yields events in order", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/chat/stream"))
				Expect(r.Header.Get("Accept")).To(Equal("text/event-stream"))

				w.Header().Set("Content-Type", "text/event-stream")
				sseRecord(w, `{"type":"start","conversation_id":"c1"}`)
				sseRecord(w, `{"type":"content","chunk":"Hello"}`)
				sseRecord(w, `{"type":"content","chunk":" world"}`)
				sseRecord(w, `{"type":"complete","conversation_id":"c1","messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"Hello world"}]}`)
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			stream, err := c.Stream(ctx, &chat.SendRequest{Message: "hi"})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			var types []chat.EventType
			for {
				ev, err := stream.Next()
				Expect(err).NotTo(HaveOccurred())
				if ev == nil {
					break
				}
				types = append(types, ev.Type)
			}

			Expect(types).To(Equal([]chat.EventType{
				chat.EventStart,
				chat.EventContent,
				chat.EventContent,
				chat.EventComplete,
			}))
		})

		It("drops undecodable records and keeps streaming", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				sseRecord(w, `{"type":"start","conversation_id":"c1"}`)
				sseRecord(w, `this is not json`)
				sseRecord(w, `{"no":"type"}`)
				sseRecord(w, `{"type":"content","chunk":"still here"}`)
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			stream, err := c.Stream(ctx, &chat.SendRequest{Message: "hi"})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			ev, err := stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal(chat.EventStart))

			ev, err = stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal(chat.EventContent))
			Expect(ev.Chunk).To(Equal("still here"))
		})

		It("fails fast on a non-200 response without handing out a stream", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			_, err := c.Stream(ctx, &chat.SendRequest{Message: "hi"})
			Expect(err).To(MatchError(ContainSubstring("status 503")))
		})

		It("tolerates a stream that ends without a trailing separator", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				fmt.Fprint(w, "data: {\"type\":\"start\",\"conversation_id\":\"c1\"}\n\n")
				fmt.Fprint(w, "data: {\"type\":\"complete\",\"conversation_id\":\"c1\",\"messages\":[]}")
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			stream, err := c.Stream(ctx, &chat.SendRequest{Message: "hi"})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			ev, err := stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal(chat.EventStart))

			ev, err = stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal(chat.EventComplete))

			ev, err = stream.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(BeNil())
		})

		It("allows closing more than once", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				sseRecord(w, `{"type":"start","conversation_id":"c1"}`)
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			stream, err := c.Stream(ctx, &chat.SendRequest{Message: "hi"})
			Expect(err).NotTo(HaveOccurred())

			Expect(stream.Close()).To(Succeed())
			Expect(stream.Close()).To(Succeed())
		})
	})

	Describe("History", func() {
		It("fetches the conversation by id", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodGet))
				Expect(r.URL.Path).To(Equal("/chat/c1"))

				_ = json.NewEncoder(w).Encode(chat.SendResponse{
					ConversationID: "c1",
					Messages:       []chat.Message{chat.NewUserMessage("hi")},
				})
			}))
			defer srv.Close()

			c := client.New(srv.URL)
			resp, err := c.History(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ConversationID).To(Equal("c1"))
			Expect(resp.Messages).To(HaveLen(1))
		})

		It("requires a conversation id", func() {
			c := client.New("http://localhost:8000")
			_, err := c.History(ctx, "")
			Expect(err).To(MatchError(ContainSubstring("required")))
		})
	})
})
