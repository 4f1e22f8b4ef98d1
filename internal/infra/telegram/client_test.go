package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		server *httptest.Server
		client *Client
		mu     sync.Mutex
		routes map[string]http.HandlerFunc
		hits   []string
	)

	ok := func(result any) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, _ := json.Marshal(result)
			_ = json.NewEncoder(w).Encode(envelope{OK: true, Result: raw})
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		routes = map[string]http.HandlerFunc{}
		hits = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			hits = append(hits, r.URL.Path)
			handler, found := routes[r.URL.Path]
			mu.Unlock()
			if !found {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
				return
			}
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		var err error
		client, err = NewClient(ClientConfig{BaseURL: server.URL, Token: "T0KEN", PollTimeout: time.Second})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should refuse an empty token", func() {
		_, err := NewClient(ClientConfig{Token: "  "})
		Expect(err).To(MatchError(ErrMissingToken))
	})

	Context("GetUpdates", func() {
		It("should send the offset and acknowledge the highest update", func() {
			var query map[string]string
			routes["/botT0KEN/getUpdates"] = func(w http.ResponseWriter, r *http.Request) {
				query = map[string]string{
					"offset":  r.URL.Query().Get("offset"),
					"timeout": r.URL.Query().Get("timeout"),
				}
				ok([]Update{{UpdateID: 41}, {UpdateID: 40}})(w, r)
			}

			updates, next, err := client.GetUpdates(ctx, 40)

			Expect(err).NotTo(HaveOccurred())
			Expect(updates).To(HaveLen(2))
			Expect(next).To(Equal(int64(42)))
			Expect(query).To(Equal(map[string]string{"offset": "40", "timeout": "1"}))
		})

		It("should keep the offset when nothing arrived", func() {
			routes["/botT0KEN/getUpdates"] = ok([]Update{})

			_, next, err := client.GetUpdates(ctx, 7)

			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(Equal(int64(7)))
		})

		It("should surface api errors without the token", func() {
			routes["/botT0KEN/getUpdates"] = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
			}

			_, _, err := client.GetUpdates(ctx, 0)

			var apiErr *APIError
			Expect(err).To(BeAssignableToTypeOf(apiErr))
			Expect(err.Error()).To(ContainSubstring("Unauthorized"))
			Expect(err.Error()).NotTo(ContainSubstring("T0KEN"))
		})
	})

	Context("SendMessage", func() {
		It("should retry refused markdown as plain text", func() {
			var modes []string
			routes["/botT0KEN/sendMessage"] = func(w http.ResponseWriter, r *http.Request) {
				var body sendMessageRequest
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				modes = append(modes, body.ParseMode)
				if body.ParseMode != "" {
					w.WriteHeader(http.StatusBadRequest)
					_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`)
					return
				}
				ok(map[string]int{"message_id": 1})(w, r)
			}

			Expect(client.SendMessage(ctx, 42, "```\nx\n", true)).To(Succeed())
			Expect(modes).To(Equal([]string{"Markdown", ""}))
		})

		It("should not retry plain text", func() {
			Expect(client.SendMessage(ctx, 42, "hello", false)).NotTo(Succeed())
			Expect(hits).To(HaveLen(1))
		})
	})

	Context("SendDocument", func() {
		It("should upload the file as multipart", func() {
			path := filepath.Join(GinkgoT().TempDir(), "staged.json")
			Expect(os.WriteFile(path, []byte(`[]`), 0o600)).To(Succeed())

			var fields map[string]string
			routes["/botT0KEN/sendDocument"] = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
				file, header, err := r.FormFile("document")
				Expect(err).NotTo(HaveOccurred())
				content, _ := io.ReadAll(file)
				fields = map[string]string{
					"chat_id":  r.FormValue("chat_id"),
					"caption":  r.FormValue("caption"),
					"filename": header.Filename,
					"content":  string(content),
				}
				ok(map[string]int{"message_id": 2})(w, r)
			}

			Expect(client.SendDocument(ctx, 42, path, "demo_report.json", "demo report (json)")).To(Succeed())
			Expect(fields).To(Equal(map[string]string{
				"chat_id":  "42",
				"caption":  "demo report (json)",
				"filename": "demo_report.json",
				"content":  "[]",
			}))
		})

		It("should fail for a missing file without calling the api", func() {
			Expect(client.SendDocument(ctx, 42, "/does/not/exist", "x", "")).NotTo(Succeed())
			Expect(hits).To(BeEmpty())
		})
	})

	Context("Download", func() {
		It("should resolve the file path and fetch the content", func() {
			routes["/botT0KEN/getFile"] = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("file_id")).To(Equal("f-1"))
				ok(File{FileID: "f-1", FilePath: "documents/file_3.csv"})(w, r)
			}
			routes["/file/botT0KEN/documents/file_3.csv"] = func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "task,minutes\n")
			}

			content, err := client.Download(ctx, "f-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(Equal("task,minutes\n"))
		})

		It("should fail when the file is gone", func() {
			routes["/botT0KEN/getFile"] = ok(File{FileID: "f-1", FilePath: "documents/gone.csv"})

			_, err := client.Download(ctx, "f-1")

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("404"))
		})
	})
})
