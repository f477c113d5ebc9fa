package chatcmder_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	chatcmder "github.com/alexgoodison/dalia/cmd/dalia/chat"
)

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("has --api-target flag with default value", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("api-target")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("a"))
		Expect(flag.DefValue).To(Equal("http://localhost:8000"))
	})

	It("has --mode flag defaulting to streaming", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("mode")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("m"))
		Expect(flag.DefValue).To(Equal("streaming"))
	})

	It("has --conversation flag with no default", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("conversation")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("c"))
		Expect(flag.DefValue).To(BeEmpty())
	})

	It("has --timeout flag with default value", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("timeout")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("300"))
	})

	It("has --log-file flag with no default", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("log-file")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(BeEmpty())
	})
})

var _ = Describe("mode validation", func() {
	var tmpDir, origDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dalia-chat-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		// Keep the developer's real ~/.dalia out of the resolution path.
		GinkgoT().Setenv("HOME", tmpDir)
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	It("rejects an unknown mode", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Flags().Set("mode", "telepathy")).To(Succeed())

		err := cmd.PreRunE(cmd, nil)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid mode"))
	})

	It("accepts streaming mode", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Flags().Set("mode", "streaming")).To(Succeed())
		Expect(cmd.PreRunE(cmd, nil)).To(Succeed())
	})

	It("accepts fallback mode", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Flags().Set("mode", "fallback")).To(Succeed())
		Expect(cmd.PreRunE(cmd, nil)).To(Succeed())
	})

	It("rejects an invalid mode from the environment", func() {
		GinkgoT().Setenv("DALIA_CHAT_MODE", "smoke-signals")

		cmd := chatcmder.NewChatCmd()
		err := cmd.PreRunE(cmd, nil)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid mode"))
	})

	It("lets a flag override an invalid environment mode", func() {
		GinkgoT().Setenv("DALIA_CHAT_MODE", "smoke-signals")

		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Flags().Set("mode", "streaming")).To(Succeed())
		Expect(cmd.PreRunE(cmd, nil)).To(Succeed())
	})
})
