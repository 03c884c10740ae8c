package credentials_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/aviary/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		mgr    *credentials.Manager
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "credentials-test-*")
		Expect(err).NotTo(HaveOccurred())

		mgr, err = credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewManager", func() {
		It("targets credentials.toml in the override directory", func() {
			Expect(mgr.GetTarget()).To(Equal(filepath.Join(tmpDir, "credentials.toml")))
		})
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds).NotTo(BeNil())
			Expect(creds.Backends).To(BeEmpty())
		})

		It("loads existing credentials", func() {
			data := `version = 0

[backends.primary]
token = "secret"
`
			Expect(os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte(data), 0o600)).To(Succeed())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Backends).To(HaveKey("primary"))
			Expect(creds.Backends["primary"].Token).To(Equal("secret"))
		})

		It("returns error for malformed TOML", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte("not valid [[["), 0o600)).To(Succeed())

			creds, err := mgr.Load()
			Expect(err).To(HaveOccurred())
			Expect(creds).To(BeNil())
		})
	})

	Describe("Save", func() {
		It("persists credentials to disk with restricted permissions", func() {
			creds := &credentials.Credentials{
				Backends: map[string]credentials.BackendCredential{
					"primary": {Token: "secret"},
				},
			}
			Expect(mgr.Save(creds)).To(Succeed())

			info, err := os.Stat(filepath.Join(tmpDir, "credentials.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("returns error for nil credentials", func() {
			Expect(mgr.Save(nil)).NotTo(Succeed())
		})
	})

	Describe("SetToken", func() {
		It("overwrites an existing token and preserves others", func() {
			Expect(mgr.SetToken("primary", "old")).To(Succeed())
			Expect(mgr.SetToken("alternate", "alt")).To(Succeed())
			Expect(mgr.SetToken("primary", "new")).To(Succeed())

			token, err := mgr.GetToken("primary")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("new"))

			token, err = mgr.GetToken("alternate")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("alt"))
		})
	})

	Describe("ResolveToken", func() {
		It("prefers the stored token", func() {
			GinkgoT().Setenv("AVIARY_TOKEN", "from-env")
			Expect(mgr.SetToken("primary", "stored")).To(Succeed())

			token, err := mgr.ResolveToken("primary")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("stored"))
		})

		It("falls back to the backend environment variable", func() {
			GinkgoT().Setenv("ENDPOINTS_TOKEN", "from-env")

			token, err := mgr.ResolveToken("alternate")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("from-env"))
		})

		It("returns empty for unknown backends", func() {
			token, err := mgr.ResolveToken("other")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})
	})

	Describe("RemoveToken", func() {
		It("removes an existing token", func() {
			Expect(mgr.SetToken("primary", "secret")).To(Succeed())
			Expect(mgr.RemoveToken("primary")).To(Succeed())

			token, err := mgr.GetToken("primary")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(BeEmpty())
		})
	})

	Describe("ListBackends", func() {
		It("returns sorted backend names", func() {
			Expect(mgr.SetToken("primary", "a")).To(Succeed())
			Expect(mgr.SetToken("alternate", "b")).To(Succeed())

			names, err := mgr.ListBackends()
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"alternate", "primary"}))
		})
	})
})

var _ = Describe("EnvVarForBackend", func() {
	It("maps known backends", func() {
		Expect(credentials.EnvVarForBackend("primary")).To(Equal("AVIARY_TOKEN"))
		Expect(credentials.EnvVarForBackend("alternate")).To(Equal("ENDPOINTS_TOKEN"))
		Expect(credentials.EnvVarForBackend("other")).To(BeEmpty())
	})

	It("reports supported backends", func() {
		Expect(credentials.IsSupportedBackend("primary")).To(BeTrue())
		Expect(credentials.IsSupportedBackend("other")).To(BeFalse())
	})
})
