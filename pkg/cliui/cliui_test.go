package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aviary/pkg/cliui"
)

var _ = Describe("cliui", func() {
	DescribeTable("FormatDuration",
		func(d time.Duration, want string) {
			Expect(cliui.FormatDuration(d)).To(Equal(want))
		},
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("seconds", 3200*time.Millisecond, "3.2s"),
	)

	It("marks success and failure", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
		Expect(cliui.Mark(errors.New("x"))).To(Equal(cliui.FailMark))
	})

	Describe("Step", func() {
		It("returns the error of fn and prints a final line", func() {
			out := &bytes.Buffer{}
			boom := errors.New("boom")

			err := cliui.Step(out, "streaming", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(out.String()).To(ContainSubstring("streaming"))
			Expect(out.String()).To(HaveSuffix("\n"))
		})
	})

	It("renders markdown", func() {
		rendered, err := cliui.RenderMarkdown("# Title\n\nsome *text*")
		Expect(err).NotTo(HaveOccurred())
		Expect(rendered).To(ContainSubstring("Title"))
		Expect(rendered).To(ContainSubstring("text"))
	})

	It("does not treat buffers as terminals", func() {
		Expect(cliui.IsTerminal(&bytes.Buffer{})).To(BeFalse())
	})
})
