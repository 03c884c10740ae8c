package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/aviary/cmd/aviary/config"
	"github.com/papercomputeco/aviary/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .aviary/ config directory")
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("set subcommand", func() {
		It("writes config.toml", func() {
			Expect(run("set", "backends.primary.url", "http://gpu-box:8000/v1")).To(Succeed())

			_, err := os.Stat(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())

			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Backends.Primary.URL).To(Equal("http://gpu-box:8000/v1"))
		})

		It("rejects unknown keys", func() {
			err := run("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("rejects an invalid backend", func() {
			Expect(run("set", "client.backend", "other")).NotTo(Succeed())
		})

		It("rejects an invalid timeout", func() {
			Expect(run("set", "client.timeout", "soon")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "client.model")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("prints a previously set value", func() {
			Expect(run("set", "client.model", "meta-llama/Llama-2-70b-chat-hf")).To(Succeed())
			Expect(run("get", "client.model")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("meta-llama/Llama-2-70b-chat-hf"))
		})

		It("prints defaults for unset keys", func() {
			Expect(run("get", "client.timeout")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("5m"))
		})

		It("marks empty values as not set", func() {
			Expect(run("get", "models.family_prefixes")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "invalid_key")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(run("list")).To(Succeed())
			for _, key := range config.ValidConfigKeys() {
				Expect(out.String()).To(ContainSubstring(key))
			}
		})

		It("rejects arguments", func() {
			Expect(run("list", "extra")).NotTo(Succeed())
		})
	})

	Describe("shell completion", func() {
		It("completes config keys", func() {
			cmd := configcmder.NewConfigCmd()
			get, _, err := cmd.Find([]string{"get"})
			Expect(err).NotTo(HaveOccurred())

			completions, directive := get.ValidArgsFunction(get, []string{}, "")
			Expect(completions).To(Equal(config.ValidConfigKeys()))
			Expect(directive).To(Equal(cobra.ShellCompDirectiveNoFileComp))
		})
	})
})
