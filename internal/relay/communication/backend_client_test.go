package communication_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"cfguard-bot/internal/relay/communication"
	"cfguard-bot/internal/relay/domain"
	"cfguard-bot/internal/relay/usecases"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type capturedRequest struct {
	Method      string
	Path        string
	RawPath     string
	Query       map[string]string
	ContentType string
	Body        []byte
}

var _ = ginkgo.Describe("BackendClient", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		client   *communication.BackendClient
		mu       sync.Mutex
		captured []capturedRequest
		respond  func(w http.ResponseWriter, r *http.Request)
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		captured = nil
		respond = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			query := map[string]string{}
			for key := range r.URL.Query() {
				query[key] = r.URL.Query().Get(key)
			}
			mu.Lock()
			captured = append(captured, capturedRequest{
				Method:      r.Method,
				Path:        r.URL.Path,
				RawPath:     r.URL.EscapedPath(),
				Query:       query,
				ContentType: r.Header.Get("Content-Type"),
				Body:        body,
			})
			mu.Unlock()
			respond(w, r)
		}))
		ginkgo.DeferCleanup(server.Close)

		var err error
		client, err = communication.NewBackendClient(communication.BackendConfig{
			BaseURL:      server.URL + "/",
			EventTimeout: 200 * time.Millisecond,
			QueryTimeout: 200 * time.Millisecond,
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	jsonResponse := func(status int, body string) func(http.ResponseWriter, *http.Request) {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(body))
		}
	}

	ginkgo.It("should reject relative base urls", func() {
		_, err := communication.NewBackendClient(communication.BackendConfig{BaseURL: "localhost"})
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.Context("PostEvent", func() {
		ginkgo.It("should post the task and the canonical timestamp", func() {
			event, err := domain.NewTaskEventBuilder().
				WithTask("T1").
				WithKind(domain.EventStart).
				WithTime(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)).
				Build()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(client.PostEvent(ctx, event)).To(gomega.Succeed())

			gomega.Expect(captured).To(gomega.HaveLen(1))
			gomega.Expect(captured[0].Method).To(gomega.Equal(http.MethodPost))
			gomega.Expect(captured[0].Path).To(gomega.Equal("/start"))
			gomega.Expect(captured[0].Body).To(gomega.MatchJSON(`{"task":"T1","ts":"2025-01-01T09:00:00+00:00"}`))
		})

		ginkgo.It("should omit the timestamp of events stamped by the backend", func() {
			event, err := domain.NewTaskEventBuilder().WithTask("T1").WithKind(domain.EventStop).Build()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(client.PostEvent(ctx, event)).To(gomega.Succeed())

			gomega.Expect(captured[0].Path).To(gomega.Equal("/stop"))
			gomega.Expect(captured[0].Body).To(gomega.MatchJSON(`{"task":"T1"}`))
		})

		ginkgo.It("should resolve a slow backend to unavailable", func() {
			respond = func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}
			event, _ := domain.NewTaskEventBuilder().WithTask("T1").WithKind(domain.EventStart).Build()

			err := client.PostEvent(ctx, event)

			gomega.Expect(err).To(gomega.MatchError(usecases.ErrBackendUnavailable))
		})

		ginkgo.It("should resolve a closed backend to unavailable", func() {
			server.Close()
			event, _ := domain.NewTaskEventBuilder().WithTask("T1").WithKind(domain.EventStart).Build()

			err := client.PostEvent(ctx, event)

			gomega.Expect(err).To(gomega.MatchError(usecases.ErrBackendUnavailable))
		})
	})

	ginkgo.Context("read operations", func() {
		ginkgo.It("should decode elapsed rows", func() {
			respond = jsonResponse(http.StatusOK, `[{"task":"T1","minutes":12.5},{"task":"T2","minutes":0}]`)

			rows, err := client.Elapsed(ctx)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.Equal([]domain.ElapsedRow{{Task: "T1", Minutes: 12.5}, {Task: "T2", Minutes: 0}}))
		})

		ginkgo.It("should flag elapsed rows missing fields as malformed", func() {
			respond = jsonResponse(http.StatusOK, `[{"task":"T1"}]`)

			_, err := client.Elapsed(ctx)

			gomega.Expect(err).To(gomega.MatchError(usecases.ErrMalformedResponse))
		})

		ginkgo.It("should request reports with project and format", func() {
			respond = jsonResponse(http.StatusOK, `{"records":[{"task":"a"}]}`)

			payload, err := client.Report(ctx, domain.ReportRequest{Project: "demo", Format: domain.ReportJSON})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(payload.HasRecords()).To(gomega.BeTrue())
			gomega.Expect(payload.Records).To(gomega.HaveLen(1))
			gomega.Expect(captured[0].Path).To(gomega.Equal("/report"))
			gomega.Expect(captured[0].Query).To(gomega.Equal(map[string]string{"project": "demo", "format": "json"}))
		})

		ginkgo.It("should decode text reports", func() {
			respond = jsonResponse(http.StatusOK, `{"report":"T1 12"}`)

			payload, err := client.Report(ctx, domain.ReportRequest{Project: "demo", Format: domain.ReportText})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(payload.HasRecords()).To(gomega.BeFalse())
			gomega.Expect(payload.Text).To(gomega.Equal("T1 12"))
		})

		ginkgo.It("should flag reports without report or records as malformed", func() {
			respond = jsonResponse(http.StatusOK, `{"rows":[]}`)

			_, err := client.Report(ctx, domain.ReportRequest{Project: "demo", Format: domain.ReportText})

			gomega.Expect(err).To(gomega.MatchError(usecases.ErrMalformedResponse))
		})

		ginkgo.It("should return the diff body and map snapshots to left and right", func() {
			respond = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>diff</html>"))
			}

			body, err := client.Diff(ctx, domain.DiffRequest{Project: "demo", Base: "v1", New: "v2"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(body).To(gomega.Equal("<html>diff</html>"))
			gomega.Expect(captured[0].Query).To(gomega.Equal(map[string]string{
				"project": "demo", "left": "v1", "right": "v2", "format": "html",
			}))
		})

		ginkgo.It("should keep the status code and body of non-2xx answers verbatim", func() {
			respond = jsonResponse(http.StatusNotFound, "snapshot v2 not found\n")

			_, err := client.Diff(ctx, domain.DiffRequest{Project: "demo", Base: "v1", New: "v2"})

			var statusErr *usecases.StatusError
			gomega.Expect(errors.As(err, &statusErr)).To(gomega.BeTrue())
			gomega.Expect(statusErr.StatusCode).To(gomega.Equal(http.StatusNotFound))
			gomega.Expect(statusErr.Body).To(gomega.Equal("snapshot v2 not found\n"))
			gomega.Expect(err).To(gomega.MatchError(usecases.ErrBackendUnavailable))
		})

		ginkgo.It("should list projects and escape project names in snapshot paths", func() {
			respond = func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/projects" {
					w.Write([]byte(`{"projects":["my project"]}`))
					return
				}
				w.Write([]byte(`{"snapshots":["s1"]}`))
			}

			projects, err := client.Projects(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(projects).To(gomega.Equal([]string{"my project"}))

			snapshots, err := client.Snapshots(ctx, "my project")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(snapshots).To(gomega.Equal([]string{"s1"}))
			gomega.Expect(captured[1].Path).To(gomega.Equal("/projects/my project/snapshots"))
			gomega.Expect(captured[1].RawPath).To(gomega.Equal("/projects/my%20project/snapshots"))
		})

		ginkgo.It("should flag a projects answer without projects as malformed", func() {
			respond = jsonResponse(http.StatusOK, `{}`)

			_, err := client.Projects(ctx)

			gomega.Expect(err).To(gomega.MatchError(usecases.ErrMalformedResponse))
		})
	})

	ginkgo.Context("write operations", func() {
		ginkgo.It("should upload imports as multipart forms", func() {
			var (
				fileName string
				content  []byte
				fields   map[string]string
			)
			respond = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"imported":3,"snapshot_id":"s-1"}`))
			}

			result, err := client.Import(ctx, domain.ImportRequest{Project: "demo", FileName: "tasks.csv", Content: []byte("a,b\n")})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.Equal(domain.ImportResult{Imported: 3, SnapshotID: "s-1"}))

			req := httptest.NewRequest(http.MethodPost, "/import", bytesReader(captured[0].Body))
			req.Header.Set("Content-Type", captured[0].ContentType)
			gomega.Expect(req.ParseMultipartForm(1 << 20)).To(gomega.Succeed())
			file, header, err := req.FormFile("file")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			fileName = header.Filename
			content, _ = io.ReadAll(file)
			fields = map[string]string{"name": req.FormValue("name"), "project": req.FormValue("project")}

			gomega.Expect(fileName).To(gomega.Equal("tasks.csv"))
			gomega.Expect(string(content)).To(gomega.Equal("a,b\n"))
			gomega.Expect(fields).To(gomega.Equal(map[string]string{"name": "tasks.csv", "project": "demo"}))
		})

		ginkgo.It("should flag an import answer without a count as malformed", func() {
			respond = jsonResponse(http.StatusOK, `{"snapshot_id":"s-1"}`)

			_, err := client.Import(ctx, domain.ImportRequest{Project: "demo", FileName: "a.csv", Content: []byte("x")})

			gomega.Expect(err).To(gomega.MatchError(usecases.ErrMalformedResponse))
		})

		ginkgo.It("should put snapshot statuses", func() {
			err := client.SetSnapshotStatus(ctx, domain.SnapshotStatus{Project: "demo", SnapshotID: "s-1", Status: "approved"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(captured[0].Method).To(gomega.Equal(http.MethodPut))
			gomega.Expect(captured[0].Path).To(gomega.Equal("/snapshot/status"))
			gomega.Expect(captured[0].Body).To(gomega.MatchJSON(`{"project":"demo","snapshot_id":"s-1","status":"approved"}`))
		})

		ginkgo.It("should post resets with the force flag", func() {
			gomega.Expect(client.Reset(ctx, true)).To(gomega.Succeed())

			var body map[string]bool
			gomega.Expect(json.Unmarshal(captured[0].Body, &body)).To(gomega.Succeed())
			gomega.Expect(body).To(gomega.Equal(map[string]bool{"force": true}))
		})
	})
})

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
