package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Vocabulary", func() {
	Describe("DefaultVocabulary", func() {
		It("lists categorical fields before monetary fields", func() {
			Expect(DefaultVocabulary().Columns()).To(Equal([]string{
				DocumentColumn,
				"승인번호", "카드종류", "카드번호", "결제일자", "판매자 상호", "대표자명", "사업자등록번호", "사업자등록상태",
				"금액", "부가세", "합계",
			}))
		})

		It("returns the monetary fields in declared order", func() {
			var names []string
			for _, f := range DefaultVocabulary().Monetary() {
				names = append(names, f.Name)
			}
			Expect(names).To(Equal([]string{"금액", "부가세", "합계"}))
		})
	})

	Describe("NewVocabulary", func() {
		var (
			fields []Field
			vocab  *Vocabulary
			err    error
		)

		JustBeforeEach(func() {
			vocab, err = NewVocabulary(fields)
		})

		When("monetary fields are declared first", func() {
			BeforeEach(func() {
				fields = []Field{
					{Name: "합계", Kind: Monetary, Strategy: StrategyHeaderEmbedded},
					{Name: "승인번호", Kind: Categorical, Strategy: StrategyPositional},
				}
			})

			It("moves categorical fields ahead", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(vocab.Columns()).To(Equal([]string{DocumentColumn, "승인번호", "합계"}))
			})
		})

		When("a name repeats", func() {
			BeforeEach(func() {
				fields = []Field{
					{Name: "금액", Kind: Monetary, Strategy: StrategyAmount},
					{Name: "금액", Kind: Monetary, Strategy: StrategyAmount},
				}
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("duplicate field")))
			})
		})

		When("a strategy is unknown", func() {
			BeforeEach(func() {
				fields = []Field{{Name: "금액", Kind: Monetary, Strategy: "guess"}}
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("unknown strategy")))
			})
		})

		When("the document column is reused", func() {
			BeforeEach(func() {
				fields = []Field{{Name: DocumentColumn, Kind: Categorical, Strategy: StrategyPositional}}
			})

			It("returns an error", func() {
				Expect(err).To(MatchError(ContainSubstring("reserved")))
			})
		})

		When("no fields are given", func() {
			BeforeEach(func() {
				fields = nil
			})

			It("returns an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("LoadVocabulary", func() {
		var (
			path  string
			vocab *Vocabulary
			err   error
		)

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "vocabulary.yaml")
		})

		JustBeforeEach(func() {
			vocab, err = LoadVocabulary(path)
		})

		When("the file is valid", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(path, []byte(`
categorical:
  - name: 승인번호
  - name: 결제일자
    strategy: timestamp
monetary:
  - name: 금액
    strategy: amount
  - name: 합계
`), 0644)).To(Succeed())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("applies default strategies", func() {
				f, ok := vocab.Lookup("승인번호")
				Expect(ok).To(BeTrue())
				Expect(f.Strategy).To(Equal(StrategyPositional))

				f, ok = vocab.Lookup("합계")
				Expect(ok).To(BeTrue())
				Expect(f.Strategy).To(Equal(StrategyHeaderEmbedded))
			})

			It("keeps explicit strategies", func() {
				f, _ := vocab.Lookup("결제일자")
				Expect(f.Strategy).To(Equal(StrategyTimestamp))
			})
		})

		When("the file does not exist", func() {
			BeforeEach(func() {
				path = filepath.Join(GinkgoT().TempDir(), "missing.yaml")
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("reading vocabulary")))
			})
		})

		When("the file is not YAML", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(path, []byte("categorical: [: nope"), 0644)).To(Succeed())
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("parsing vocabulary")))
			})
		})
	})
})
