package export

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			filename  string
			savedPath string
			err       error
		)

		BeforeEach(func() {
			filename = "241018.csv"
		})

		JustBeforeEach(func() {
			savedPath, err = storage.Save(filename, []byte("파일명\n1.pdf\n"))
		})

		It("does not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the full path", func() {
			Expect(savedPath).To(Equal(filepath.Join(tmpDir, filename)))
			Expect(savedPath).To(BeAnExistingFile())
		})

		It("leaves no temporary files behind", func() {
			entries, readErr := os.ReadDir(tmpDir)
			Expect(readErr).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		When("the file already exists", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(filepath.Join(tmpDir, filename), []byte("old"), 0644)).To(Succeed())
			})

			It("replaces it", func() {
				data, readErr := os.ReadFile(savedPath)
				Expect(readErr).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("파일명\n1.pdf\n"))
			})
		})
	})

	Describe("Delete", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("old.diagnostics.csv", []byte("x"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("removes it", func() {
				Expect(storage.Delete("old.diagnostics.csv")).To(Succeed())
				Expect(filepath.Join(tmpDir, "old.diagnostics.csv")).NotTo(BeAnExistingFile())
			})
		})

		When("the file does not exist", func() {
			It("does not return an error", func() {
				Expect(storage.Delete("nonexistent.csv")).To(Succeed())
			})
		})
	})

	Describe("NewLocalStorage", func() {
		When("the directory does not exist", func() {
			It("creates it", func() {
				path := filepath.Join(GinkgoT().TempDir(), "csv", "out")
				_, err := NewLocalStorage(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(path).To(BeADirectory())
			})
		})

		When("the path is a file", func() {
			It("returns an error", func() {
				path := filepath.Join(GinkgoT().TempDir(), "file")
				Expect(os.WriteFile(path, nil, 0644)).To(Succeed())

				_, err := NewLocalStorage(path)
				Expect(err).To(MatchError(ContainSubstring("creating output directory")))
			})
		})
	})
})
