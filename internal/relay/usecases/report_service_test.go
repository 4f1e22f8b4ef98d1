package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"cfguard-bot/internal/relay/domain"
	"cfguard-bot/internal/relay/usecases"
	mockusecases "cfguard-bot/test/unit/doubles/relay/usecases"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("ReportService", func() {
	var (
		ctx         context.Context
		ctrl        *gomock.Controller
		mockBackend *mockusecases.MockBackend
		mockLog     *mockusecases.MockEventLog
		stagingDir  string
		service     *usecases.SimpleReportService
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockBackend = mockusecases.NewMockBackend(ctrl)
		mockLog = mockusecases.NewMockEventLog(ctrl)
		stagingDir = ginkgo.GinkgoT().TempDir()
		service = usecases.NewReportService(mockBackend, mockLog, usecases.ReportConfig{StagingDir: stagingDir})
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.Context("Elapsed", func() {
		ginkgo.It("should return the backend rows", func() {
			rows := []domain.ElapsedRow{{Task: "T1", Minutes: 12.5}}
			mockBackend.EXPECT().Elapsed(gomock.Any()).Return(rows, nil)

			report, err := service.Elapsed(ctx)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Degraded).To(gomega.BeFalse())
			gomega.Expect(report.Rows).To(gomega.Equal(rows))
		})

		ginkgo.It("should degrade to zero minutes per locally logged task", func() {
			mockBackend.EXPECT().Elapsed(gomock.Any()).Return(nil, usecases.ErrBackendUnavailable)
			mockLog.EXPECT().Tasks(gomock.Any()).Return([]string{"T1", "T2"}, nil)

			report, err := service.Elapsed(ctx)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.Degraded).To(gomega.BeTrue())
			gomega.Expect(report.Rows).To(gomega.Equal([]domain.ElapsedRow{
				{Task: "T1", Minutes: 0},
				{Task: "T2", Minutes: 0},
			}))
		})
	})

	ginkgo.Context("Render", func() {
		ginkgo.It("should pretty print json records into a staged file", func() {
			mockBackend.EXPECT().Report(gomock.Any(), domain.ReportRequest{Project: "demo", Format: domain.ReportJSON}).
				Return(domain.ReportPayload{Records: []json.RawMessage{json.RawMessage(`{"task":"a","note":"<b>"}`)}}, nil)

			delivery, err := service.Render(ctx, domain.ReportRequest{Project: "demo", Format: domain.ReportJSON})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(delivery.Chunks).To(gomega.BeEmpty())
			gomega.Expect(delivery.Artifact).NotTo(gomega.BeNil())
			gomega.Expect(delivery.Artifact.Name).To(gomega.Equal("demo_report.json"))

			content, err := os.ReadFile(delivery.Artifact.Path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(string(content)).To(gomega.Equal("[\n  {\n    \"task\": \"a\",\n    \"note\": \"<b>\"\n  }\n]\n"))

			var decoded []map[string]string
			gomega.Expect(json.Unmarshal(content, &decoded)).To(gomega.Succeed())
			gomega.Expect(decoded).To(gomega.HaveLen(1))
		})

		ginkgo.DescribeTable("staging text blobs",
			func(format domain.ReportFormat, name string) {
				mockBackend.EXPECT().Report(gomock.Any(), gomock.Any()).Return(domain.ReportPayload{Text: "| a | 1 |"}, nil)

				delivery, err := service.Render(ctx, domain.ReportRequest{Project: "demo", Format: format})

				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(delivery.Artifact.Name).To(gomega.Equal(name))
				gomega.Expect(filepath.Dir(filepath.Dir(delivery.Artifact.Path))).To(gomega.Equal(stagingDir))
				content, err := os.ReadFile(delivery.Artifact.Path)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(string(content)).To(gomega.Equal("| a | 1 |"))
			},
			ginkgo.Entry("table", domain.ReportTable, "demo_report.txt"),
			ginkgo.Entry("html", domain.ReportHTML, "demo_report.html"),
		)

		ginkgo.It("should chunk plain reports in order", func() {
			text := strings.Repeat("a", 4000) + strings.Repeat("é", 4000) + "tail"
			mockBackend.EXPECT().Report(gomock.Any(), gomock.Any()).Return(domain.ReportPayload{Text: text}, nil)

			delivery, err := service.Render(ctx, domain.ReportRequest{Project: "demo", Format: domain.ReportText})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(delivery.Artifact).To(gomega.BeNil())
			gomega.Expect(delivery.Chunks).To(gomega.HaveLen(3))
			gomega.Expect(delivery.Chunks[2]).To(gomega.Equal("tail"))
			gomega.Expect(strings.Join(delivery.Chunks, "")).To(gomega.Equal(text))
		})

		ginkgo.It("should produce no file when the backend is unavailable", func() {
			mockBackend.EXPECT().Report(gomock.Any(), gomock.Any()).Return(domain.ReportPayload{}, usecases.ErrBackendUnavailable)

			delivery, err := service.Render(ctx, domain.ReportRequest{Project: "demo", Format: domain.ReportHTML})

			gomega.Expect(err).To(gomega.MatchError(usecases.ErrBackendUnavailable))
			gomega.Expect(delivery.Artifact).To(gomega.BeNil())
			entries, _ := os.ReadDir(stagingDir)
			gomega.Expect(entries).To(gomega.BeEmpty())
		})
	})

	ginkgo.Context("Diff", func() {
		ginkgo.It("should stage the html diff under a descriptive name", func() {
			request := domain.DiffRequest{Project: "demo", Base: "v1", New: "v2"}
			mockBackend.EXPECT().Diff(gomock.Any(), request).Return("<html>diff</html>", nil)

			delivery, err := service.Diff(ctx, request)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(delivery.Artifact.Name).To(gomega.Equal("diff_demo_v1_vs_v2.html"))

			gomega.Expect(delivery.Artifact.Cleanup()).To(gomega.Succeed())
			_, err = os.Stat(delivery.Artifact.Path)
			gomega.Expect(os.IsNotExist(err)).To(gomega.BeTrue())
		})

		ginkgo.It("should keep the status code and body of a rejected diff", func() {
			mockBackend.EXPECT().Diff(gomock.Any(), gomock.Any()).
				Return("", &usecases.StatusError{StatusCode: 404, Body: "snapshot v9 not found"})

			_, err := service.Diff(ctx, domain.DiffRequest{Project: "demo", Base: "v1", New: "v9"})

			var statusErr *usecases.StatusError
			gomega.Expect(errors.As(err, &statusErr)).To(gomega.BeTrue())
			gomega.Expect(statusErr.StatusCode).To(gomega.Equal(404))
			gomega.Expect(statusErr.Body).To(gomega.Equal("snapshot v9 not found"))
		})
	})
})

var _ = ginkgo.Describe("SplitChunks", func() {
	ginkgo.It("should produce ceil(L/size) chunks", func() {
		for _, length := range []int{1, 3999, 4000, 4001, 12000, 12001} {
			text := strings.Repeat("x", length)
			chunks := usecases.SplitChunks(text, 4000)
			gomega.Expect(chunks).To(gomega.HaveLen((length + 3999) / 4000))
			gomega.Expect(strings.Join(chunks, "")).To(gomega.Equal(text))
		}
	})

	ginkgo.It("should return nothing for empty text", func() {
		gomega.Expect(usecases.SplitChunks("", 4000)).To(gomega.BeEmpty())
	})
})
