package messenger

import (
	"encoding/json"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/kitakits/stock-ledger/internal/session"
)

var _ = Describe("Client", func() {
	var (
		client      *Client
		ghttpServer *ghttp.Server
		received    []sendRequest
	)

	BeforeEach(func() {
		received = nil
		ghttpServer = ghttp.NewServer()
		ghttpServer.RouteToHandler("POST", "/me/messages", func(w http.ResponseWriter, r *http.Request) {
			var req sendRequest
			Expect(json.NewDecoder(r.Body).Decode(&req)).NotTo(HaveOccurred())
			received = append(received, req)
			w.Write([]byte(`{"message_id": "mid.1"}`))
		})
		client = NewClientWithURL("token-123", ghttpServer.URL())
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	Describe("PresentText", func() {
		It("should send a plain text message to the recipient", func() {
			Expect(client.PresentText("owner-1", "Hello")).NotTo(HaveOccurred())

			Expect(received).To(HaveLen(1))
			Expect(received[0].Recipient.ID).To(Equal("owner-1"))
			Expect(received[0].Message.Text).To(Equal("Hello"))
			Expect(received[0].Message.QuickReplies).To(BeEmpty())
		})

		When("the API rejects the message", func() {
			BeforeEach(func() {
				ghttpServer.RouteToHandler("POST", "/me/messages", func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, `{"error": "bad token"}`, http.StatusBadRequest)
				})
			})

			It("should return an error with the status", func() {
				err := client.PresentText("owner-1", "Hello")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("400"))
			})
		})
	})

	Describe("PresentOptions", func() {
		It("should attach the options as quick replies", func() {
			options := []session.Option{
				{ID: "confirm", Label: "✅ Save all"},
				{ID: "skip", Label: "🗑 Skip"},
			}
			Expect(client.PresentOptions("owner-1", "Save everything?", options)).NotTo(HaveOccurred())

			Expect(received).To(HaveLen(1))
			Expect(received[0].Message.Text).To(Equal("Save everything?"))
			Expect(received[0].Message.QuickReplies).To(HaveLen(2))
			Expect(received[0].Message.QuickReplies[0].ContentType).To(Equal("text"))
			Expect(received[0].Message.QuickReplies[0].Title).To(Equal("✅ Save all"))
			Expect(received[0].Message.QuickReplies[0].Payload).To(Equal("confirm"))
		})

		It("should truncate past the platform limit", func() {
			var options []session.Option
			for i := 0; i < 20; i++ {
				options = append(options, session.Option{ID: fmt.Sprintf("opt-%d", i), Label: fmt.Sprintf("Option %d", i)})
			}
			Expect(client.PresentOptions("owner-1", "Pick one", options)).NotTo(HaveOccurred())

			Expect(received[0].Message.QuickReplies).To(HaveLen(13))
		})
	})

	Describe("FetchAttachment", func() {
		BeforeEach(func() {
			ghttpServer.RouteToHandler("GET", "/attachment.jpg", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/jpeg")
				w.Write([]byte("jpeg bytes"))
			})
		})

		It("should return the bytes and content type", func() {
			data, contentType, err := client.FetchAttachment(ghttpServer.URL() + "/attachment.jpg")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("jpeg bytes")))
			Expect(contentType).To(Equal("image/jpeg"))
		})

		When("the CDN returns an error", func() {
			It("should return an error", func() {
				ghttpServer.RouteToHandler("GET", "/gone.jpg", func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "gone", http.StatusNotFound)
				})
				_, _, err := client.FetchAttachment(ghttpServer.URL() + "/gone.jpg")
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
