package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var origCwd string

	BeforeEach(func() {
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		GinkgoT().Setenv("TABAGENT_SQLITE", "")
		GinkgoT().Setenv("TABAGENT_DB", "")
		GinkgoT().Setenv("XDG_DATA_HOME", "")
	})

	AfterEach(func() {
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("prefers the override", func() {
		GinkgoT().Setenv("TABAGENT_SQLITE", "/tmp/env.db")

		path, err := ResolveSQLitePath("/tmp/flag.db", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/flag.db"))
	})

	It("prefers TABAGENT_SQLITE over TABAGENT_DB", func() {
		GinkgoT().Setenv("TABAGENT_SQLITE", "/tmp/custom.db")
		GinkgoT().Setenv("TABAGENT_DB", "/tmp/other.db")

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.db"))
	})

	It("places the database in the config dir when given", func() {
		dir := GinkgoT().TempDir()

		path, err := ResolveSQLitePath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, DefaultFileName)))
	})

	It("finds an existing XDG database", func() {
		xdg := GinkgoT().TempDir()
		GinkgoT().Setenv("XDG_DATA_HOME", xdg)
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())
		Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())

		dbPath := filepath.Join(xdg, "tabagent", DefaultFileName)
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("falls back to ~/.tabagent/tabagent.db", func() {
		home := GinkgoT().TempDir()
		GinkgoT().Setenv("HOME", home)
		Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())

		resolvedHome, err := filepath.EvalSymlinks(home)
		Expect(err).NotTo(HaveOccurred())
		Expect([]string{
			filepath.Join(home, ".tabagent", DefaultFileName),
			filepath.Join(resolvedHome, ".tabagent", DefaultFileName),
		}).To(ContainElement(path))
	})
})
