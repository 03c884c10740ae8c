package authcmder_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/aviary/cmd/aviary/auth"
	"github.com/papercomputeco/aviary/pkg/credentials"
	"github.com/papercomputeco/aviary/pkg/llm"
)

var _ = Describe("Auth Command", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	newCmd := func(stdin string, args ...string) *cobra.Command {
		cmd := authcmder.NewAuthCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .aviary/ config directory")
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetIn(bytes.NewBufferString(stdin))
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("NewAuthCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Use).To(Equal("auth [backend]"))
			Expect(cmd.Short).NotTo(BeEmpty())
			Expect(cmd.Flags().Lookup("list")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("remove")).NotTo(BeNil())
		})
	})

	Describe("storing tokens", func() {
		It("stores a piped token for a backend", func() {
			Expect(newCmd("tok-123\n", "primary").Execute()).To(Succeed())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			token, err := mgr.GetToken("primary")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-123"))
		})

		It("accepts backend aliases", func() {
			Expect(newCmd("tok-456\n", "endpoints").Execute()).To(Succeed())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			token, err := mgr.GetToken("alternate")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("tok-456"))
		})

		It("rejects an empty token", func() {
			err := newCmd("   \n", "primary").Execute()
			Expect(err).To(MatchError(ContainSubstring("token cannot be empty")))
		})

		It("rejects missing input", func() {
			err := newCmd("", "primary").Execute()
			Expect(err).To(MatchError(ContainSubstring("no input received")))
		})

		It("requires a backend argument", func() {
			err := newCmd("tok\n").Execute()
			Expect(err).To(MatchError(ContainSubstring("backend argument required")))
		})

		It("rejects an unknown backend", func() {
			err := newCmd("tok\n", "other").Execute()
			Expect(errors.Is(err, llm.ErrConfiguration)).To(BeTrue())
		})
	})

	Describe("--list flag", func() {
		It("shows no tokens when none are stored", func() {
			Expect(newCmd("", "--list").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No stored tokens"))
		})

		It("lists stored tokens", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetToken("alternate", "tok")).To(Succeed())

			Expect(newCmd("", "--list").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("alternate"))
			Expect(out.String()).To(ContainSubstring("ENDPOINTS_TOKEN"))
		})
	})

	Describe("--remove flag", func() {
		It("removes a stored token", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetToken("primary", "tok")).To(Succeed())

			Expect(newCmd("", "--remove", "aviary").Execute()).To(Succeed())

			token, err := mgr.GetToken("primary")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})
	})

	Describe("shell completion", func() {
		It("completes backend names", func() {
			cmd := authcmder.NewAuthCmd()
			completions, directive := cmd.ValidArgsFunction(cmd, []string{}, "")
			Expect(completions).To(ConsistOf("primary", "alternate"))
			Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))
		})

		It("provides no completions after the first arg", func() {
			cmd := authcmder.NewAuthCmd()
			completions, _ := cmd.ValidArgsFunction(cmd, []string{"primary"}, "")
			Expect(completions).To(BeNil())
		})
	})
})
