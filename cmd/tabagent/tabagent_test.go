package tabagentcmder_test

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tabagentcmder "github.com/papercomputeco/tabagent/cmd/tabagent"
	"github.com/papercomputeco/tabagent/mock"
	"github.com/papercomputeco/tabagent/pkg/agentstream"
	"github.com/papercomputeco/tabagent/pkg/storage"
	"github.com/papercomputeco/tabagent/pkg/storage/sqlite"
)

var _ = Describe("NewTabagentCmd", func() {
	It("registers every subcommand", func() {
		cmd := tabagentcmder.NewTabagentCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("ask", "chat", "history", "config", "mock", "version"))
	})

	It("silences cobra's own error and usage output", func() {
		cmd := tabagentcmder.NewTabagentCmd()
		Expect(cmd.SilenceErrors).To(BeTrue())
		Expect(cmd.SilenceUsage).To(BeTrue())
	})

	It("prints the version", func() {
		var out bytes.Buffer
		cmd := tabagentcmder.NewTabagentCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"version"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(HavePrefix("tabagent "))
		Expect(out.String()).To(ContainSubstring("Sha: "))
	})
})

var _ = Describe("Commands against a mock agent server", func() {
	var (
		server    *mock.Server
		target    string
		configDir string
	)

	// execute runs the root command with args and returns stdout and stderr.
	execute := func(stdin string, args ...string) (string, string, error) {
		var stdout, stderr bytes.Buffer
		cmd := tabagentcmder.NewTabagentCmd()
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs(append(args, "--config-dir", configDir))
		err := cmd.ExecuteContext(context.Background())
		return stdout.String(), stderr.String(), err
	}

	recordedRuns := func() []*storage.Run {
		driver, err := sqlite.NewDriver(context.Background(), filepath.Join(configDir, "tabagent.db"))
		Expect(err).NotTo(HaveOccurred())
		defer driver.Close()

		runs, err := driver.List(context.Background(), 0)
		Expect(err).NotTo(HaveOccurred())
		return runs
	}

	BeforeEach(func() {
		// Keep the caller's environment out of config resolution.
		for _, env := range os.Environ() {
			if name, _, _ := strings.Cut(env, "="); strings.HasPrefix(name, "TABAGENT_") {
				GinkgoT().Setenv(name, "")
				Expect(os.Unsetenv(name)).To(Succeed())
			}
		}

		configDir = GinkgoT().TempDir()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		server = mock.NewServer(mock.Config{ChunkSize: 5}, nil)
		go func() {
			defer GinkgoRecover()
			_ = server.Serve(ln)
		}()
		target = "http://" + ln.Addr().String()
	})

	AfterEach(func() {
		Expect(server.Shutdown()).To(Succeed())
	})

	Describe("ask", func() {
		It("streams the answer and records the run", func() {
			stdout, _, err := execute("", "ask", "--target", target, "which", "region?")
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout).To(Equal(mock.Reply("which region?") + "\n"))

			runs := recordedRuns()
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].Query).To(Equal("which region?"))
			Expect(runs[0].Output).To(Equal(mock.Reply("which region?")))
			Expect(runs[0].Failed()).To(BeFalse())
			Expect(runs[0].Target).To(Equal(target))
		})

		It("reads the query from stdin", func() {
			stdout, _, err := execute("  grüße aus Köln  \n", "ask", "--target", target)
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout).To(Equal(mock.Reply("grüße aus Köln") + "\n"))
		})

		It("rejects an empty query", func() {
			_, _, err := execute("   \n", "ask", "--target", target)
			Expect(err).To(HaveOccurred())
		})

		It("does not record with --no-record", func() {
			_, _, err := execute("", "ask", "--target", target, "--no-record", "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(recordedRuns()).To(BeEmpty())
		})

		It("writes the raw stream with --dump", func() {
			dump := filepath.Join(configDir, "run.sse")
			_, _, err := execute("", "ask", "--target", target, "--dump", dump, "hello")
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(dump)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("event: values"))
			Expect(string(data)).To(ContainSubstring("event: end"))
		})

		It("shows the failure inline and records it when the server is unreachable", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			dead := "http://" + ln.Addr().String()
			Expect(ln.Close()).To(Succeed())

			stdout, _, err := execute("", "ask", "--target", dead, "hello")
			Expect(err).To(HaveOccurred())
			Expect(agentstream.IsTerminal(err)).To(BeTrue())
			Expect(stdout).To(HavePrefix("Error: "))

			runs := recordedRuns()
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].Failed()).To(BeTrue())
		})

		It("rejects an invalid target before sending anything", func() {
			_, _, err := execute("", "ask", "--target", "ftp://example.com", "hello")
			Expect(err).To(HaveOccurred())
			Expect(agentstream.IsTerminal(err)).To(BeFalse())
		})
	})

	Describe("chat", func() {
		It("answers each message until /exit", func() {
			stdout, _, err := execute("first\n\nsecond\n/exit\nnever sent\n", "chat", "--target", target)
			Expect(err).NotTo(HaveOccurred())

			Expect(stdout).To(ContainSubstring(mock.Reply("first")))
			Expect(stdout).To(ContainSubstring(mock.Reply("second")))
			Expect(stdout).NotTo(ContainSubstring("never sent"))
			Expect(recordedRuns()).To(HaveLen(2))
		})

		It("ends the session at end of input", func() {
			stdout, _, err := execute("only\n", "chat", "--target", target, "--no-record")
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout).To(ContainSubstring(mock.Reply("only")))
		})
	})

	Describe("history", func() {
		BeforeEach(func() {
			for _, q := range []string{"first question", "second question"} {
				_, _, err := execute("", "ask", "--target", target, q)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("lists runs newest first", func() {
			stdout, _, err := execute("", "history", "list")
			Expect(err).NotTo(HaveOccurred())

			first := strings.Index(stdout, "first question")
			second := strings.Index(stdout, "second question")
			Expect(first).To(BeNumerically(">", -1))
			Expect(second).To(BeNumerically(">", -1))
			Expect(second).To(BeNumerically("<", first))
		})

		It("honors --limit", func() {
			stdout, _, err := execute("", "history", "list", "--limit", "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout).To(ContainSubstring("second question"))
			Expect(stdout).NotTo(ContainSubstring("first question"))
		})

		It("shows a run by unique ID prefix", func() {
			runs := recordedRuns()
			Expect(runs).To(HaveLen(2))

			stdout, _, err := execute("", "history", "show", runs[0].ID[:8])
			Expect(err).NotTo(HaveOccurred())
			Expect(stdout).To(ContainSubstring(runs[0].ID))
			Expect(stdout).To(ContainSubstring(runs[0].Query))
			Expect(stdout).To(ContainSubstring(mock.Reply(runs[0].Query)))
		})

		It("reports an unknown run", func() {
			_, _, err := execute("", "history", "show", "zzzzzzzz")
			var notFound storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(notFound))
		})
	})
})
