package node_test

import (
	"cfguard-bot/internal/infra/node"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Node", func() {
	ginkgo.Context("GetNodeInfo", func() {
		ginkgo.It("should return node information with all fields", func() {
			nodeInfo := node.GetNodeInfo()

			gomega.Expect(nodeInfo).ToNot(gomega.BeNil())
			gomega.Expect(nodeInfo.ID).To(gomega.HaveLen(36))
			gomega.Expect(nodeInfo.Hostname).ToNot(gomega.BeEmpty())
			gomega.Expect(nodeInfo.Version).To(gomega.Equal(node.Version))
			gomega.Expect(nodeInfo.CommitHash).To(gomega.Equal(node.CommitHash))
			gomega.Expect(nodeInfo.StartedAt.IsZero()).To(gomega.BeFalse())
		})

		ginkgo.It("should return the same node ID on multiple calls (singleton)", func() {
			nodeInfo1 := node.GetNodeInfo()
			nodeInfo2 := node.GetNodeInfo()
			gomega.Expect(nodeInfo1.ID).To(gomega.Equal(nodeInfo2.ID))
			gomega.Expect(nodeInfo1.StartedAt).To(gomega.Equal(nodeInfo2.StartedAt))
		})

		ginkgo.It("should report a non negative uptime", func() {
			gomega.Expect(node.GetNodeInfo().Uptime()).To(gomega.BeNumerically(">=", 0))
		})
	})
})
