package backend_test

import (
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aviary/pkg/backend"
	"github.com/papercomputeco/aviary/pkg/config"
	"github.com/papercomputeco/aviary/pkg/credentials"
	"github.com/papercomputeco/aviary/pkg/llm"
)

type fakeTokens struct {
	tokens map[string]string
	err    error
}

func (f fakeTokens) ResolveToken(name string) (string, error) {
	return f.tokens[name], f.err
}

var _ = Describe("ParseSelector", func() {
	DescribeTable("accepts canonical names and aliases",
		func(name string, want backend.Selector) {
			sel, err := backend.ParseSelector(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(sel).To(Equal(want))
		},
		Entry("primary", "primary", backend.Primary),
		Entry("aviary alias", "aviary", backend.Primary),
		Entry("mixed case", " Alternate ", backend.Alternate),
		Entry("endpoints alias", "endpoints", backend.Alternate),
	)

	It("rejects other values with a configuration error", func() {
		_, err := backend.ParseSelector("other")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, llm.ErrConfiguration)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(`"other"`))
	})
})

var _ = Describe("Backend", func() {
	It("joins the chat completions path without doubled slashes", func() {
		Expect(backend.Backend{URL: "http://host:8000/v1/"}.ChatCompletionsURL()).To(Equal("http://host:8000/v1/chat/completions"))
		Expect(backend.Backend{URL: "http://host:8000/v1"}.ChatCompletionsURL()).To(Equal("http://host:8000/v1/chat/completions"))
	})

	DescribeTable("BearerFromToken",
		func(token, want string) {
			Expect(backend.BearerFromToken(token)).To(Equal(want))
		},
		Entry("empty", "", ""),
		Entry("raw token", "abc", "Bearer abc"),
		Entry("already prefixed", "Bearer abc", "Bearer abc"),
	)
})

var _ = Describe("StaticResolver", func() {
	r := backend.StaticResolver{
		backend.Primary: {URL: "http://primary/v1", Bearer: "Bearer p"},
	}

	It("resolves configured selectors", func() {
		b, err := r.Resolve(backend.Primary)
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal(backend.Backend{Name: backend.Primary, URL: "http://primary/v1", Bearer: "Bearer p"}))
	})

	It("fails for unconfigured selectors", func() {
		_, err := r.Resolve(backend.Alternate)
		Expect(errors.Is(err, llm.ErrConfiguration)).To(BeTrue())
	})

	It("fails for unknown selectors", func() {
		_, err := r.Resolve(backend.Selector("other"))
		Expect(errors.Is(err, llm.ErrConfiguration)).To(BeTrue())
	})
})

var _ = Describe("ConfigResolver", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.NewDefaultConfig()
		cfg.Backends.Primary.URL = "http://primary/v1"
		cfg.Backends.Alternate.URL = "https://alternate/v1"
	})

	It("combines config URLs with tokens", func() {
		r := backend.NewConfigResolver(cfg, fakeTokens{tokens: map[string]string{"alternate": "tok"}})

		b, err := r.Resolve(backend.Alternate)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.URL).To(Equal("https://alternate/v1"))
		Expect(b.Bearer).To(Equal("Bearer tok"))

		b, err = r.Resolve(backend.Primary)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Bearer).To(BeEmpty())
	})

	It("works without a token source", func() {
		b, err := backend.NewConfigResolver(cfg, nil).Resolve(backend.Primary)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Bearer).To(BeEmpty())
	})

	It("reports a missing URL as a configuration error", func() {
		cfg.Backends.Primary.URL = ""

		_, err := backend.NewConfigResolver(cfg, nil).Resolve(backend.Primary)
		Expect(errors.Is(err, llm.ErrConfiguration)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("backends.primary.url"))
	})

	It("rejects unknown selectors before consulting tokens", func() {
		tokens := fakeTokens{err: errors.New("should not be called")}

		_, err := backend.NewConfigResolver(cfg, tokens).Resolve(backend.Selector("other"))
		Expect(errors.Is(err, llm.ErrConfiguration)).To(BeTrue())
	})

	It("wraps token source failures", func() {
		tokens := fakeTokens{err: errors.New("disk on fire")}

		_, err := backend.NewConfigResolver(cfg, tokens).Resolve(backend.Primary)
		Expect(err).To(MatchError(ContainSubstring("disk on fire")))
	})

	It("reads tokens through the credentials manager", func() {
		tmpDir, err := os.MkdirTemp("", "backend-creds-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		mgr, err := credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.SetToken("primary", "stored")).To(Succeed())

		b, err := backend.NewConfigResolver(cfg, mgr).Resolve(backend.Primary)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Bearer).To(Equal("Bearer stored"))
	})
})
